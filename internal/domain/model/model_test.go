package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/eeat/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseIntent(t *testing.T) {
	convey.Convey("Given raw intent strings", t, func() {
		convey.Convey("When the value is a known intent in any case", func() {
			in, err := model.ParseIntent("  Commercial ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(in, convey.ShouldEqual, model.IntentCommercial)
		})

		convey.Convey("When the value is empty", func() {
			in, err := model.ParseIntent("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(in, convey.ShouldEqual, model.IntentUnknown)
		})

		convey.Convey("When the value is not an intent", func() {
			_, err := model.ParseIntent("entertainment")
			convey.So(errors.Is(err, model.ErrUnknownIntent), convey.ShouldBeTrue)
		})

		convey.Convey("When the value is the catalog sentinel", func() {
			_, err := model.ParseIntent("all")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestParseYMYL(t *testing.T) {
	convey.Convey("Given raw ymyl strings", t, func() {
		y, err := model.ParseYMYL("Finance")
		convey.So(err, convey.ShouldBeNil)
		convey.So(y, convey.ShouldEqual, model.YMYLFinance)

		y, err = model.ParseYMYL("")
		convey.So(err, convey.ShouldBeNil)
		convey.So(y, convey.ShouldEqual, model.YMYLNone)

		_, err = model.ParseYMYL("groups")
		convey.So(errors.Is(err, model.ErrUnknownYMYL), convey.ShouldBeTrue)
	})
}

func TestRatings(t *testing.T) {
	convey.Convey("Given a ratings map", t, func() {
		r := model.Ratings{"c1": 2, "c2": -1}

		convey.Convey("Then valid values pass validation", func() {
			convey.So(r.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a value is out of range", func() {
			r["c3"] = 3
			err := r.Validate()

			convey.Convey("Then an InvalidRatingError is returned", func() {
				var invalid *model.InvalidRatingError
				convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
				convey.So(invalid.SignalID, convey.ShouldEqual, "c3")
				convey.So(invalid.Value, convey.ShouldEqual, 3)
				convey.So(errors.Is(err, model.ErrInvalidRating), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When cloned", func() {
			c := r.Clone()
			c["c1"] = 0

			convey.Convey("Then the original is untouched", func() {
				convey.So(r["c1"], convey.ShouldEqual, model.RatingFull)
			})
		})

		convey.Convey("Then scored excludes the manual sentinel", func() {
			convey.So(model.RatingUnscored.Scored(), convey.ShouldBeFalse)
			convey.So(model.RatingMissing.Scored(), convey.ShouldBeTrue)
			convey.So(model.Rating(5).Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestBatch(t *testing.T) {
	convey.Convey("Given a new batch", t, func() {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		b := model.NewBatch("b1", "example.com", []string{"https://example.com/a", "https://example.com/b"}, now)

		convey.Convey("Then every page starts pending", func() {
			convey.So(b.Pages, convey.ShouldHaveLength, 2)
			convey.So(b.Pages[0].Status, convey.ShouldEqual, model.StatusPending)
			convey.So(b.Done(), convey.ShouldBeFalse)
			convey.So(b.Domain.Started(), convey.ShouldBeFalse)
		})

		convey.Convey("When looking up pages", func() {
			p, err := b.Page(1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.URL, convey.ShouldEqual, "https://example.com/b")

			_, err = b.Page(7)
			convey.So(errors.Is(err, model.ErrPageNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When pages finish", func() {
			b.Pages[0].Status = model.StatusComplete
			b.Pages[1].Status = model.StatusError

			convey.So(b.Done(), convey.ShouldBeTrue)
			convey.So(b.Completed(), convey.ShouldHaveLength, 1)
			convey.So(b.Counts()[model.StatusError], convey.ShouldEqual, 1)
		})

		convey.Convey("When cloned and the clone is mutated", func() {
			c := b.Clone()
			c.Pages[0].Ratings["c1"] = 2
			c.Domain.Observed["d5"] = 2

			convey.Convey("Then the original is untouched", func() {
				convey.So(b.Pages[0].Ratings, convey.ShouldBeEmpty)
				convey.So(b.Domain.Observed, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestDomainEffective(t *testing.T) {
	convey.Convey("Given observed ratings and an override", t, func() {
		d := model.Domain{
			Observed:  model.Ratings{"d5": 2, "d6": 1},
			Overrides: model.Ratings{"d6": 2, "d10": 1},
		}
		eff := d.Effective()

		convey.So(eff["d5"], convey.ShouldEqual, model.RatingFull)
		convey.So(eff["d6"], convey.ShouldEqual, model.RatingFull)
		convey.So(eff["d10"], convey.ShouldEqual, model.RatingPartial)
		convey.So(d.Observed["d6"], convey.ShouldEqual, model.RatingPartial)
	})
}
