package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/tillhouse/conference-meet-scorer-sub003/internal/app"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
)

func newScoreCmd(a *app) *cobra.Command {
	var (
		file string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a meet snapshot file and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()
			return score(cmd, f, mode, a.cfg.ViewMode())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot JSON file")
	cmd.Flags().StringVarP(&mode, "mode", "m", "",
		"view mode: simulated, real or hybrid (default is the meet's own mode)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// score decodes one snapshot from r, ranks it and writes the result to the
// command's output. Per-record warnings go to the log.
func score(cmd *cobra.Command, r io.Reader, rawMode string, fallback model.ViewMode) error {
	ctx := cmd.Context()

	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	mode := fallback
	switch {
	case rawMode != "":
		m, err := model.ParseViewMode(rawMode)
		if err != nil {
			return err
		}
		mode = m
	case snap.Meet.ViewMode != "":
		m, err := model.ParseViewMode(string(snap.Meet.ViewMode))
		if err != nil {
			return fmt.Errorf("meet view mode: %w", err)
		}
		mode = m
	}

	res, err := service.Evaluate(snap, mode, nil)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Get().Warn(ctx, w.Message,
			logger.String("kind", string(w.Kind)),
			logger.String("record_id", w.RecordID),
		)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
