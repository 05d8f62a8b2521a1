package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info", func() {
			Get().Info(ctx, "snapshot stored", String("meet_id", "m1"), Int("events", 4))

			Convey("Then fields and the caller are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "snapshot stored")
				So(out, ShouldContainSubstring, "meet_id=m1")
				So(out, ShouldContainSubstring, "events=4")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown", Error(errors.New("boom")))

			Convey("Then info lines are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "error=boom")
			})
		})

		Convey("When using a named logger", func() {
			Named("worker").Info(ctx, "job done", Bool("cached", true))

			Convey("Then fields are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "worker.cached=true")
			})
		})

		Convey("When the level is unknown", func() {
			Convey("Then an error is returned", func() {
				So(SetLevelString("loud"), ShouldNotBeNil)
				So(SetLevelString("DEBUG"), ShouldBeNil)
				So(Sync(), ShouldBeNil)
			})
		})
	})

	Convey("Given JSON output", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithJSON(true)), ShouldBeNil)
		Get().Error(context.Background(), "failed", Float64("ms", 1.5))

		Convey("Then lines are JSON objects", func() {
			So(buf.String(), ShouldStartWith, "{")
			So(buf.String(), ShouldContainSubstring, `"ms":1.5`)
		})
	})

	Convey("Given the nop logger", t, func() {
		Convey("Then logging is a no-op", func() {
			So(func() { Nop().Named("x").Debug(context.Background(), "quiet", Any("k", 1)) }, ShouldNotPanic)
		})
	})
}
