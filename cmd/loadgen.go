package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/loadgen"
)

func newLoadgenCmd() *cobra.Command {
	cfg := &loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Submit synthetic meets to a running service and verify its standings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadgen.Run(cmd.Context(), cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"meets=%d submitted=%d accepted=%d duplicate=%d failed=%d verified=%d/%d duration=%s\n",
					stats.MeetsGenerated, stats.MeetsSubmitted, stats.MeetsAccepted, stats.MeetsDuplicate,
					stats.MeetsFailed, stats.ResultsVerified, stats.ResultsRead, stats.Duration)
				for _, msg := range stats.VerificationErrs {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().IntVar(&cfg.Meets, "meets", loadgen.DefaultMeets, "number of meets")
	cmd.Flags().IntVar(&cfg.Teams, "teams", loadgen.DefaultTeams, "teams per meet")
	cmd.Flags().IntVar(&cfg.AthletesPerTeam, "athletes", loadgen.DefaultAthletesPerTeam, "swimmers per team")
	cmd.Flags().IntVar(&cfg.Workers, "workers", loadgen.DefaultWorkers, "concurrent submitters")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", loadgen.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&cfg.Settle, "settle", 0, "pause between submitting and reading")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "generator seed")
	return cmd
}
