package relay_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/relay"
)

func TestConfigFor(t *testing.T) {
	Convey("Given relay event names", t, func() {
		Convey("When the event is a 400 medley relay", func() {
			c := relay.ConfigFor("400 Medley Relay")

			Convey("Then it has four 100 legs in medley order", func() {
				So(c.NumLegs, ShouldEqual, 4)
				So(c.DistancePerLeg, ShouldEqual, 100)
				So(c.Strokes, ShouldResemble, []model.Stroke{model.StrokeBack, model.StrokeBreast, model.StrokeFly, model.StrokeFree})
				So(c.IsMedley(), ShouldBeTrue)
				So(c.LegStroke(0), ShouldEqual, model.StrokeBack)
			})
		})

		Convey("When the event is an 800 free relay", func() {
			c := relay.ConfigFor("800 Free Relay")
			So(c.DistancePerLeg, ShouldEqual, 200)
			So(c.Strokes, ShouldBeNil)
			So(c.LegStroke(2), ShouldEqual, model.StrokeFree)
		})

		Convey("When no distance is recognised", func() {
			c := relay.ConfigFor("Medley relay")
			So(c.TotalDistance, ShouldEqual, 200)
			So(c.DistancePerLeg, ShouldEqual, 50)
			So(c.IsMedley(), ShouldBeTrue)
		})
	})
}

func TestSegments(t *testing.T) {
	Convey("Given leg distances", t, func() {
		So(relay.SegmentsPerLeg(50), ShouldEqual, 1)
		So(relay.SegmentsPerLeg(100), ShouldEqual, 2)
		So(relay.SegmentsPerLeg(200), ShouldEqual, 4)
		So(relay.SegmentsPerLeg(25), ShouldEqual, 1)
		So(relay.DistanceLabels(100), ShouldResemble, []int{50, 100})
		So(relay.DistanceLabels(200), ShouldResemble, []int{50, 100, 150, 200})
		So(relay.DistanceLabels(25), ShouldResemble, []int{25})
	})
}

func TestLegSplits(t *testing.T) {
	Convey("Given cumulative splits of a 400 relay", t, func() {
		cumulative := []float64{22.0, 47.5, 69.0, 95.0, 117.0, 143.0, 164.0, 190.0}
		legs := relay.LegSplits(cumulative, 100)
		So(legs, ShouldResemble, []float64{47.5, 47.5, 48.0, 47.0})

		Convey("When splits stop early", func() {
			legs := relay.LegSplits(cumulative[:5], 100)
			So(legs, ShouldResemble, []float64{47.5, 47.5, 0, 0})
		})
	})
}

func TestParseMembers(t *testing.T) {
	Convey("Given serialized member lists", t, func() {
		m, err := relay.ParseMembers(`["a1", null, 17, "a4"]`)
		So(err, ShouldBeNil)
		So(m, ShouldResemble, []string{"a1", "", "17", "a4"})

		m, err = relay.ParseMembers("")
		So(err, ShouldBeNil)
		So(m, ShouldBeNil)

		_, err = relay.ParseMembers(`["a1", `)
		So(errors.Is(err, model.ErrMalformedConfiguration), ShouldBeTrue)

		_, err = relay.ParseMembers(`[{"id": 1}]`)
		So(errors.Is(err, model.ErrMalformedConfiguration), ShouldBeTrue)
	})
}
