package scoring_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/scoring"
)

func TestGenerate(t *testing.T) {
	Convey("Given a 16 place table with 20 start points and a 2.0 relay multiplier", t, func() {
		tbl := scoring.Generate(16, 20, 2.0)

		Convey("Then it follows the A/B final curve", func() {
			So(tbl.Individual[1], ShouldEqual, 20)
			So(tbl.Individual[2], ShouldEqual, 17)
			So(tbl.Individual[8], ShouldEqual, 11)
			So(tbl.Individual[9], ShouldEqual, 9)
			So(tbl.Individual[16], ShouldEqual, 1)
			So(len(tbl.Individual), ShouldEqual, 16)
		})

		Convey("Then relays are scored through 8th only", func() {
			So(tbl.Relay[1], ShouldEqual, 40)
			So(tbl.Relay[8], ShouldEqual, tbl.Individual[8]*2)
			So(len(tbl.Relay), ShouldEqual, 8)
			So(tbl.Points(9, true), ShouldEqual, 0)
		})

		Convey("Then places beyond the table score zero", func() {
			So(tbl.Points(17, false), ShouldEqual, 0)
			So(tbl.Points(0, false), ShouldEqual, 0)
			So(tbl.Places(false), ShouldEqual, 16)
			So(tbl.Places(true), ShouldEqual, 8)
		})
	})

	Convey("Given a 24 place table", t, func() {
		tbl := scoring.Generate(24, 32, 2.0)

		Convey("Then the gaps widen at the final boundaries", func() {
			So(tbl.Individual[1], ShouldEqual, 32)
			So(tbl.Individual[2], ShouldEqual, 28)
			So(tbl.Individual[8]-tbl.Individual[9], ShouldEqual, 2)
			So(tbl.Individual[16]-tbl.Individual[17], ShouldEqual, 2)
			So(tbl.Individual[24], ShouldEqual, 1)
		})
	})

	Convey("Given any other place count", t, func() {
		tbl := scoring.Generate(10, 6, 1.5)

		Convey("Then points decay linearly with a floor of one", func() {
			So(tbl.Individual[1], ShouldEqual, 6)
			So(tbl.Individual[6], ShouldEqual, 1)
			So(tbl.Individual[10], ShouldEqual, 1)
		})

		Convey("Then relay points round half away from zero", func() {
			So(tbl.Relay[1], ShouldEqual, 9)
			So(tbl.Relay[2], ShouldEqual, 8) // 5 * 1.5 = 7.5
		})
	})

	Convey("Given no scoring places", t, func() {
		tbl := scoring.Generate(0, 20, 2)
		So(tbl.Individual, ShouldBeEmpty)
		So(tbl.Relay, ShouldBeEmpty)
	})
}

func TestGenerateProperties(t *testing.T) {
	Convey("Given a range of configurations", t, func() {
		Convey("Then first place scores the start points, points never increase, and generation is deterministic", func() {
			for _, places := range []int{1, 5, 8, 16, 20, 24, 30} {
				for _, start := range []int{9, 20, 32} {
					tbl := scoring.Generate(places, start, 2)
					So(tbl.Individual[1], ShouldEqual, start)
					for p := 2; p <= places; p++ {
						So(tbl.Individual[p], ShouldBeLessThanOrEqualTo, tbl.Individual[p-1])
					}
					for p := 2; p <= len(tbl.Relay); p++ {
						So(tbl.Relay[p], ShouldBeLessThanOrEqualTo, tbl.Relay[p-1])
					}
					So(scoring.Generate(places, start, 2), ShouldResemble, tbl)
				}
			}
		})
	})
}

func TestParsePoints(t *testing.T) {
	Convey("Given serialized point maps", t, func() {
		Convey("When an object keyed by place is given", func() {
			pts, err := scoring.ParsePoints(`{"1": 20, "2": 17, "3": 16}`)
			So(err, ShouldBeNil)
			So(pts, ShouldResemble, map[int]int{1: 20, 2: 17, 3: 16})
		})

		Convey("When an array in place order is given", func() {
			pts, err := scoring.ParsePoints(`[9, 4, 3, 2, 1]`)
			So(err, ShouldBeNil)
			So(pts[1], ShouldEqual, 9)
			So(pts[5], ShouldEqual, 1)
		})

		Convey("When nothing is stored", func() {
			pts, err := scoring.ParsePoints("  ")
			So(err, ShouldBeNil)
			So(pts, ShouldBeNil)
		})

		Convey("When the JSON is malformed", func() {
			for _, raw := range []string{`{"1": 20`, `{"first": 20}`, `{"0": 3}`, `"20"`} {
				_, err := scoring.ParsePoints(raw)
				So(errors.Is(err, model.ErrMalformedConfiguration), ShouldBeTrue)
			}
		})

		Convey("When a table is encoded and parsed back", func() {
			tbl := scoring.Generate(16, 20, 2)
			back, err := scoring.ParsePoints(scoring.EncodePoints(tbl.Individual))
			So(err, ShouldBeNil)
			So(back, ShouldResemble, tbl.Individual)
		})
	})
}

func TestForMeet(t *testing.T) {
	Convey("Given meet configurations", t, func() {
		memo := &scoring.Memo{}

		Convey("When the meet stores no tables", func() {
			tbl, err := memo.ForMeet(model.Meet{ScoringPlaces: 16, ScoringStartPoints: 20, RelayMultiplier: 2})
			So(err, ShouldBeNil)
			So(tbl.Individual[2], ShouldEqual, 17)
			So(tbl.Relay[1], ShouldEqual, 40)
		})

		Convey("When the meet stores an individual table only", func() {
			tbl, err := memo.ForMeet(model.Meet{
				ScoringPlaces:      16,
				ScoringStartPoints: 20,
				RelayMultiplier:    2,
				IndividualScoring:  `{"1": 9, "2": 4}`,
			})
			So(err, ShouldBeNil)
			So(tbl.Individual, ShouldResemble, map[int]int{1: 9, 2: 4})
			So(tbl.Relay[1], ShouldEqual, 40)
		})

		Convey("When a stored table is malformed", func() {
			_, err := scoring.ForMeet(model.Meet{RelayScoring: `{oops}`})
			So(errors.Is(err, model.ErrMalformedConfiguration), ShouldBeTrue)
		})

		Convey("When the same configuration is resolved twice", func() {
			a := memo.Generate(24, 32, 2)
			b := memo.Generate(24, 32, 2)
			So(a, ShouldResemble, b)
		})
	})
}
