package model_test

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	model "github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

func TestParseIDList(t *testing.T) {
	convey.Convey("Given serialized id lists", t, func() {
		convey.Convey("When ids are strings and numbers with duplicates", func() {
			ids, err := model.ParseIDList(`["e2", 7, "e2", "", "e1"]`)

			convey.Convey("Then order is kept and duplicates and blanks are dropped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids, convey.ShouldResemble, []string{"e2", "7", "e1"})
			})
		})

		convey.Convey("When the list is empty or absent", func() {
			ids, err := model.ParseIDList("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(ids, convey.ShouldBeNil)

			set, err := model.ParseIDSet("[]")
			convey.So(err, convey.ShouldBeNil)
			convey.So(set, convey.ShouldNotBeNil)
			convey.So(set, convey.ShouldBeEmpty)
		})

		convey.Convey("When the JSON is malformed", func() {
			_, err := model.ParseIDSet(`{"a": 1}`)
			convey.So(errors.Is(err, model.ErrMalformedConfiguration), convey.ShouldBeTrue)

			_, err = model.ParseIDList(`[true]`)
			convey.So(errors.Is(err, model.ErrMalformedConfiguration), convey.ShouldBeTrue)
		})
	})
}
