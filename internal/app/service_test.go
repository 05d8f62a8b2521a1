package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/adapters/repository"
	service "github.com/tillhouse/conference-meet-scorer-sub003/internal/app"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/metrics"
)

func snapshot() model.Snapshot {
	athlete := func(id, team string, times ...model.EventTime) model.Athlete {
		return model.Athlete{ID: id, TeamID: team, Name: id, IsEnabled: true, EventTimes: times}
	}
	seed := func(text string) model.EventTime {
		return model.EventTime{EventID: "free50", Time: text}
	}
	split := func(text string) model.EventTime {
		return model.EventTime{EventID: "free50", Time: text, IsRelaySplit: true}
	}

	return model.Snapshot{
		Meet: model.Meet{ID: "m1", Name: "Winter Invite", MeetType: model.MeetChampionship},
		Events: []model.Event{
			{ID: "free50", Name: "50 Free"},
			{ID: "relay200", Name: "200 Free Relay"},
		},
		Teams: []model.Team{
			{ID: "ta", Name: "Aardvarks", Athletes: []model.Athlete{
				athlete("a1", "ta", seed("20.00"), split("19.50")),
				athlete("a2", "ta", seed("21.00"), split("19.60")),
				athlete("a3", "ta", split("19.70")),
				athlete("a4", "ta", split("19.80")),
			}},
			{ID: "tb", Name: "Badgers", Athletes: []model.Athlete{
				athlete("b1", "tb", seed("20.50")),
			}},
		},
		MeetTeams: []model.MeetTeam{
			{TeamID: "ta", SelectedAthletes: `["a1","a2","a3","a4"]`},
			{TeamID: "tb", SelectedAthletes: `["b1"]`},
		},
		Lineups: []model.MeetLineup{
			{ID: "l1", AthleteID: "a1", EventID: "free50"},
			{ID: "l2", AthleteID: "a2", EventID: "free50"},
			{ID: "l3", AthleteID: "b1", EventID: "free50"},
		},
		RelayEntries: []model.RelayEntry{
			{ID: "r1", TeamID: "ta", EventID: "relay200", Members: `["a1","a2","a3","a4"]`},
		},
	}
}

func started(opts ...service.Option) (*service.Service, func()) {
	opts = append([]service.Option{service.WithLogger(logger.Nop()), service.WithWorkerCount(2)}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		So(svc.Stop(ctx), ShouldBeNil)
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// cacheLookups reads the results cache counter for one outcome.
func cacheLookups(outcome string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "results_cache_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("Then operations report it", func() {
			_, err := svc.PutSnapshot(context.Background(), "sub-1", snapshot())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Standings(context.Background(), "m1", "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Stop(context.Background()), ShouldBeNil)
		})
	})

	Convey("Given a started service", t, func() {
		svc, stop := started(service.WithQueueSize(16), service.WithDedupeSize(100))

		Convey("Then starting twice is harmless and stats are reported", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 16)
			So(stats["meets"], ShouldEqual, 0)
		})

		stop()
	})

	Convey("Given reads running while the service stops", t, func() {
		svc, _ := started()
		ctx := context.Background()
		_, err := svc.PutSnapshot(ctx, "sub-1", snapshot())
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 200; j++ {
					svc.Standings(ctx, "m1", model.ViewSimulated)
					svc.Availability(ctx, "m1")
					svc.ListMeets(ctx)
				}
			}()
		}
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		So(svc.Stop(stopCtx), ShouldBeNil)
		wg.Wait()

		Convey("Then later reads report the service stopped", func() {
			_, err := svc.Standings(ctx, "m1", model.ViewSimulated)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Then it can be started again with a fresh store", func() {
			So(svc.Start(ctx), ShouldBeNil)
			list, err := svc.ListMeets(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
			So(svc.Stop(stopCtx), ShouldBeNil)
		})
	})
}

func TestService_PutSnapshot(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc, stop := started()
		defer stop()

		Convey("When a snapshot is submitted", func() {
			res, err := svc.PutSnapshot(ctx, "sub-1", snapshot())
			So(err, ShouldBeNil)

			Convey("Then it is stored at revision one", func() {
				So(res.Duplicate, ShouldBeFalse)
				So(res.Revision, ShouldEqual, 1)
				So(res.MeetID, ShouldEqual, "m1")
			})

			Convey("Then the workers cache every view mode", func() {
				So(waitFor(func() bool { return svc.GetStats()["cachedResults"] == len(model.ViewModes) }), ShouldBeTrue)
			})

			Convey("Then a retry with the same submission id is a duplicate", func() {
				again, err := svc.PutSnapshot(ctx, "sub-1", snapshot())
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
				So(again.Revision, ShouldEqual, 0)
			})

			Convey("Then a new submission bumps the revision", func() {
				again, err := svc.PutSnapshot(ctx, "", snapshot())
				So(err, ShouldBeNil)
				So(again.Revision, ShouldEqual, 2)
				So(again.SubmissionID, ShouldNotBeBlank)
			})
		})

		Convey("When the snapshot carries malformed JSON", func() {
			snap := snapshot()
			snap.MeetTeams[0].SelectedAthletes = `["a1",`
			_, err := svc.PutSnapshot(ctx, "sub-bad", snap)

			Convey("Then it is refused and the submission id stays free", func() {
				So(errors.Is(err, service.ErrInvalidSnapshot), ShouldBeTrue)
				So(errors.Is(err, model.ErrMalformedConfiguration), ShouldBeTrue)
				snap.MeetTeams[0].SelectedAthletes = `["a1"]`
				res, err := svc.PutSnapshot(ctx, "sub-bad", snap)
				So(err, ShouldBeNil)
				So(res.Duplicate, ShouldBeFalse)
			})
		})

		Convey("When the meet names an unknown view mode", func() {
			snap := snapshot()
			snap.Meet.ViewMode = "Projected"
			_, err := svc.PutSnapshot(ctx, "sub-mode", snap)

			Convey("Then it is refused as an invalid snapshot", func() {
				So(errors.Is(err, service.ErrInvalidSnapshot), ShouldBeTrue)
				So(errors.Is(err, model.ErrUnknownViewMode), ShouldBeTrue)
				_, err := svc.Standings(ctx, "m1", "")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the meet view mode is differently capitalised", func() {
			snap := snapshot()
			snap.Meet.ViewMode = " Real "
			_, err := svc.PutSnapshot(ctx, "sub-mode", snap)
			So(err, ShouldBeNil)

			Convey("Then it is stored normalised and used by default", func() {
				res, err := svc.Standings(ctx, "m1", "")
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, model.ViewReal)
			})
		})

		Convey("When the meet id is missing", func() {
			snap := snapshot()
			snap.Meet.ID = ""
			_, err := svc.PutSnapshot(ctx, "sub-x", snap)

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrInvalidSnapshot), ShouldBeTrue)
			})
		})
	})
}

func TestService_Reads(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored meet", t, func() {
		svc, stop := started()
		defer stop()
		_, err := svc.PutSnapshot(ctx, "sub-1", snapshot())
		So(err, ShouldBeNil)

		Convey("When reading standings without a mode", func() {
			res, err := svc.Standings(ctx, "m1", "")

			Convey("Then the default hybrid view ranks the seeds", func() {
				So(err, ShouldBeNil)
				So(res.Mode, ShouldEqual, model.ViewHybrid)
				So(res.Standings[0].TeamID, ShouldEqual, "ta")
				So(res.Standings[0].Points, ShouldEqual, 76)
				So(res.Standings[1].Points, ShouldEqual, 17)
			})
		})

		Convey("When a read looks up the results cache", func() {
			hits, misses := cacheLookups("hit"), cacheLookups("miss")
			_, err := svc.Standings(ctx, "m1", model.ViewSimulated)
			So(err, ShouldBeNil)

			Convey("Then exactly one lookup is counted", func() {
				So(cacheLookups("hit")+cacheLookups("miss")-hits-misses, ShouldEqual, 1)
			})
		})

		Convey("When the meet is deleted and stored again", func() {
			So(svc.DeleteMeet(ctx, "m1"), ShouldBeNil)
			res, err := svc.PutSnapshot(ctx, "sub-again", snapshot())
			So(err, ShouldBeNil)

			Convey("Then the revision keeps growing", func() {
				So(res.Revision, ShouldEqual, 2)
				av, err := svc.Availability(ctx, "m1")
				So(err, ShouldBeNil)
				So(av.Revision, ShouldEqual, 2)
			})
		})

		Convey("When reading the real view", func() {
			res, err := svc.Standings(ctx, "m1", model.ViewReal)

			Convey("Then no results are shown", func() {
				So(err, ShouldBeNil)
				So(res.HasRealResults, ShouldBeFalse)
				So(res.Standings[0].Points, ShouldEqual, 0)
			})
		})

		Convey("When reading one event", func() {
			ev, err := svc.EventResults(ctx, "m1", "free50", model.ViewSimulated)

			Convey("Then its rows are ranked", func() {
				So(err, ShouldBeNil)
				So(len(ev.Rows), ShouldEqual, 3)
				So(ev.Rows[0].AthleteID, ShouldEqual, "a1")
				So(ev.Rows[0].Points, ShouldEqual, 20)
			})

			Convey("Then an unknown event is reported", func() {
				_, err := svc.EventResults(ctx, "m1", "fly100", model.ViewSimulated)
				So(errors.Is(err, service.ErrEventNotFound), ShouldBeTrue)
			})
		})

		Convey("When an official time is stored", func() {
			snap := snapshot()
			snap.Lineups[2].OverrideTime = "19.90"
			_, err := svc.PutSnapshot(ctx, "sub-2", snap)
			So(err, ShouldBeNil)

			Convey("Then availability and the hybrid view follow it", func() {
				av, err := svc.Availability(ctx, "m1")
				So(err, ShouldBeNil)
				So(av.Revision, ShouldEqual, 2)
				So(av.HasRealResults, ShouldBeTrue)
				So(av.HasSimulatedData, ShouldBeTrue)

				ev, err := svc.EventResults(ctx, "m1", "free50", model.ViewHybrid)
				So(err, ShouldBeNil)
				So(ev.Rows[0].AthleteID, ShouldEqual, "b1")
			})
		})

		Convey("When the meet is listed and deleted", func() {
			list, err := svc.ListMeets(ctx)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(svc.DeleteMeet(ctx, "m1"), ShouldBeNil)

			Convey("Then reads report it missing", func() {
				_, err := svc.Standings(ctx, "m1", model.ViewHybrid)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = svc.Availability(ctx, "m1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a snapshot outside any service", t, func() {
		res, err := service.Evaluate(snapshot(), model.ViewSimulated, nil)

		Convey("Then it is ranked without the stack", func() {
			So(err, ShouldBeNil)
			So(res.MeetID, ShouldEqual, "m1")
			So(len(res.Events), ShouldEqual, 2)
		})

		Convey("Then an unknown mode is an error", func() {
			_, err := service.Evaluate(snapshot(), "fantasy", nil)
			So(errors.Is(err, model.ErrUnknownViewMode), ShouldBeTrue)
		})
	})
}
