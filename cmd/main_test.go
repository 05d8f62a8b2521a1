package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/config"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/ranking"
	"github.com/tillhouse/conference-meet-scorer-sub003/pkg/logger"
)

const snapshotJSON = `{
  "meet": {"id": "m1", "name": "Dual", "meet_type": "dual"},
  "events": [{"id": "free50", "name": "50 Free"}],
  "teams": [
    {"id": "ta", "name": "Aardvarks", "athletes": [
      {"id": "a1", "team_id": "ta", "name": "Ann", "is_enabled": true, "event_times": [{"event_id": "free50", "time": "24.10"}]}
    ]},
    {"id": "tb", "name": "Badgers", "athletes": [
      {"id": "b1", "team_id": "tb", "name": "Bo", "is_enabled": true, "event_times": [{"event_id": "free50", "time": "23.90"}]}
    ]}
  ],
  "meet_teams": [
    {"team_id": "ta", "selected_athletes": "[\"a1\"]"},
    {"team_id": "tb", "selected_athletes": "[\"b1\"]"}
  ],
  "lineups": [
    {"id": "l1", "athlete_id": "a1", "event_id": "free50", "override_time": "23.50"},
    {"id": "l2", "athlete_id": "b1", "event_id": "free50"}
  ]
}`

func writeSnapshot(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(snapshotJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runRoot(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestScoreCommand(t *testing.T) {
	convey.Convey("Given a snapshot file", t, func() {
		t.Setenv(config.EnvConfigPath, "")
		path := writeSnapshot(t)

		convey.Convey("When it is scored in simulated mode", func() {
			out, _, err := runRoot("score", "--file", path, "--mode", "simulated")
			convey.So(err, convey.ShouldBeNil)

			var res ranking.Result
			convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)

			convey.Convey("Then the seed times decide the event", func() {
				ev, ok := res.Event("free50")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(ev.Rows[0].AthleteID, convey.ShouldEqual, "b1")
				convey.So(res.Standings[0].TeamID, convey.ShouldEqual, "tb")
			})
		})

		convey.Convey("When it is scored in real mode", func() {
			out, _, err := runRoot("score", "-f", path, "-m", "real")
			convey.So(err, convey.ShouldBeNil)

			var res ranking.Result
			convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)

			convey.Convey("Then only the official time is ranked", func() {
				ev, _ := res.Event("free50")
				convey.So(len(ev.Rows), convey.ShouldEqual, 1)
				convey.So(ev.Rows[0].AthleteID, convey.ShouldEqual, "a1")
				convey.So(res.HasRealResults, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the mode is unknown", func() {
			_, _, err := runRoot("score", "--file", path, "--mode", "fantasy")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the meet names an unknown view mode", func() {
			bad := filepath.Join(t.TempDir(), "projected.json")
			raw := strings.Replace(snapshotJSON, `"meet_type": "dual"`, `"meet_type": "dual", "view_mode": "Projected"`, 1)
			convey.So(os.WriteFile(bad, []byte(raw), 0o600), convey.ShouldBeNil)
			_, _, err := runRoot("score", "--file", bad)

			convey.Convey("Then the meet's mode is blamed", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "meet view mode")
			})
		})

		convey.Convey("When the file is missing", func() {
			_, _, err := runRoot("score", "--file", filepath.Join(t.TempDir(), "nope.json"))

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the config file is broken", func() {
			bad := filepath.Join(t.TempDir(), "bad.yaml")
			convey.So(os.WriteFile(bad, []byte("queue_size: [\n"), 0o600), convey.ShouldBeNil)
			_, _, err := runRoot("--config", bad, "score", "--file", path)

			convey.Convey("Then setup fails before scoring", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "failed to load config")
			})
		})
	})
}

func TestServe(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		t.Setenv(config.EnvConfigPath, "")
		cfg := config.New(context.Background())
		cfg.WorkerCount = 2
		convey.So(logger.Init(logger.WithWriter(io.Discard)), convey.ShouldBeNil)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		base := "http://" + ln.Addr().String()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- serve(ctx, cfg, ln) }()

		convey.Convey("When a snapshot is stored and read back", func() {
			body := fmt.Sprintf(`{"submission_id":"sub-1","snapshot":%s}`, snapshotJSON)
			req, err := http.NewRequest(http.MethodPut, base+"/meets/m1", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			put, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			_ = put.Body.Close()

			get, err := http.Get(base + "/meets/m1/standings?mode=hybrid")
			convey.So(err, convey.ShouldBeNil)
			var res ranking.Result
			convey.So(json.NewDecoder(get.Body).Decode(&res), convey.ShouldBeNil)
			_ = get.Body.Close()

			docs, err := http.Get(base + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = docs.Body.Close()

			convey.Convey("Then the service answers over HTTP", func() {
				convey.So(put.StatusCode, convey.ShouldEqual, http.StatusAccepted)
				convey.So(get.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(res.Standings[0].TeamID, convey.ShouldEqual, "ta")
				convey.So(docs.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the load generator runs against it", func() {
			out, _, err := runRoot("loadgen", "--url", base, "--meets", "2", "--teams", "2", "--athletes", "4")

			convey.Convey("Then every result verifies", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "verified=6/6")
			})
		})

		cancel()
		select {
		case err := <-done:
			convey.So(err, convey.ShouldBeNil)
		case <-time.After(10 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}
