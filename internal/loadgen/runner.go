package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/types"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
)

// ErrVerification reports standings that disagree with their own rows.
var ErrVerification = errors.New("verification failed")

type putBody struct {
	SubmissionID string         `json:"submission_id"`
	Snapshot     model.Snapshot `json:"snapshot"`
}

// Run generates meets, submits each one twice (the retry must be reported
// as a duplicate), then reads every view mode back and verifies it.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadgen")

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("meets", cfg.Meets),
		logger.Int("teams", cfg.Teams),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("service health check failed with status: %d", status)
	}

	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	meets := make([]model.Snapshot, cfg.Meets)
	for i := range meets {
		meets[i] = GenerateMeet(r, cfg.Teams, cfg.AthletesPerTeam)
	}
	stats.MeetsGenerated = len(meets)

	submit(ctx, client, cfg.Workers, meets, stats, log)

	if cfg.Settle > 0 {
		select {
		case <-time.After(cfg.Settle):
		case <-ctx.Done():
			return stats, ctx.Err()
		}
	}

	for _, snap := range meets {
		for _, mode := range model.ViewModes {
			var res ranking.Result
			path := fmt.Sprintf("/meets/%s/standings?mode=%s", snap.Meet.ID, mode)
			status, err := client.do(ctx, http.MethodGet, path, nil, &res)
			if err != nil || status != http.StatusOK {
				stats.VerificationErrs = append(stats.VerificationErrs, fmt.Sprintf("%s: status %d: %v", path, status, err))
				continue
			}
			stats.ResultsRead++
			if err := Verify(res); err != nil {
				stats.VerificationErrs = append(stats.VerificationErrs, err.Error())
				continue
			}
			stats.ResultsVerified++
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "load run finished",
		logger.Int("accepted", stats.MeetsAccepted),
		logger.Int("duplicates", stats.MeetsDuplicate),
		logger.Int("failed", stats.MeetsFailed),
		logger.Int("verified", stats.ResultsVerified),
		logger.String("duration", stats.Duration.String()),
	)

	if len(stats.VerificationErrs) > 0 || stats.MeetsFailed > 0 {
		return stats, fmt.Errorf("%d results, %d submissions: %w",
			len(stats.VerificationErrs), stats.MeetsFailed, ErrVerification)
	}
	return stats, nil
}

// submit fans the meets out to workers.
func submit(ctx context.Context, client *httpClient, workers int, meets []model.Snapshot, stats *Stats, log logger.Logger) {
	jobs := make(chan model.Snapshot)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for snap := range jobs {
				body := putBody{SubmissionID: uuid.NewString(), Snapshot: snap}
				for attempt := 0; attempt < 2; attempt++ {
					var ack types.PutResult
					status, err := client.do(ctx, http.MethodPut, "/meets/"+snap.Meet.ID, body, &ack)

					mu.Lock()
					stats.MeetsSubmitted++
					switch {
					case err != nil || status >= http.StatusBadRequest:
						stats.MeetsFailed++
						log.Warn(ctx, "submission failed",
							logger.String("meet_id", snap.Meet.ID),
							logger.Int("status", status),
							logger.Error(err),
						)
					case ack.Duplicate:
						stats.MeetsDuplicate++
					default:
						stats.MeetsAccepted++
					}
					mu.Unlock()
				}
			}
		}()
	}
	for _, snap := range meets {
		jobs <- snap
	}
	close(jobs)
	wg.Wait()
}
