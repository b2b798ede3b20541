package scoring_test

import (
	"errors"
	"testing"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// twoSignals is the A/B catalog: A weight 3 Trust for all intents,
// B weight 2 Trust for informational pages only.
func twoSignals(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("test", catalog.Group{
		ID:    "trust",
		Scope: catalog.ScopePage,
		Signals: []catalog.Signal{
			{ID: "A", Label: "A", Concept: model.Trust, Weight: 3, Intents: []model.Intent{model.IntentAll}},
			{ID: "B", Label: "B", Concept: model.Trust, Weight: 2, Intents: []model.Intent{model.IntentInformational}},
		},
	})
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return c
}

func TestResolve(t *testing.T) {
	Convey("Given signals with different intent rules", t, func() {
		all := catalog.Signal{ID: "x", Intents: []model.Intent{model.IntentAll}}
		info := catalog.Signal{ID: "y", Intents: []model.Intent{model.IntentInformational}, ManualCheck: true}

		Convey("Then an all-intent signal applies everywhere", func() {
			for _, in := range model.Intents {
				So(scoring.Resolve(all, in).Applies, ShouldBeTrue)
			}
		})

		Convey("Then a listed intent applies and others do not", func() {
			So(scoring.Resolve(info, model.IntentInformational).Applies, ShouldBeTrue)
			So(scoring.Resolve(info, model.IntentCommercial).Applies, ShouldBeFalse)
		})

		Convey("Then an unknown intent applies every signal", func() {
			So(scoring.Resolve(info, model.IntentUnknown).Applies, ShouldBeTrue)
		})

		Convey("Then manual review is independent of applicability", func() {
			So(scoring.Resolve(info, model.IntentCommercial), ShouldResemble,
				scoring.Applicability{Applies: false, RequiresManualReview: true})
			So(scoring.Resolve(info, model.IntentInformational).RequiresManualReview, ShouldBeTrue)
			So(scoring.Resolve(all, model.IntentService).RequiresManualReview, ShouldBeFalse)
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given the two-signal catalog", t, func() {
		cat := twoSignals(t)

		Convey("When a commercial page rates A full and B missing", func() {
			b, err := scoring.Aggregate(cat, model.Ratings{"A": 2, "B": 0}, model.IntentCommercial)
			So(err, ShouldBeNil)

			Convey("Then B is excluded and Trust is 100", func() {
				So(b.Get(model.Trust), ShouldEqual, 100)
			})

			Convey("Then concepts without signals score 0 and pull the mean down", func() {
				So(b.Get(model.Experience), ShouldEqual, 0)
				So(b.Overall, ShouldEqual, 25)
				So(b.Keys, ShouldResemble, model.Concepts)
			})
		})

		Convey("When an informational page rates A partial and B missing", func() {
			b, err := scoring.Aggregate(cat, model.Ratings{"A": 1, "B": 0}, model.IntentInformational)
			So(err, ShouldBeNil)
			So(b.Get(model.Trust), ShouldEqual, 30)
		})

		Convey("When no ratings are present", func() {
			for _, in := range append([]model.Intent{model.IntentUnknown}, model.Intents...) {
				b, err := scoring.Aggregate(cat, model.Ratings{}, in)
				So(err, ShouldBeNil)
				for _, c := range model.Concepts {
					So(b.Get(c), ShouldEqual, 0)
				}
				So(b.Overall, ShouldEqual, 0)
			}
		})

		Convey("When an unscored or absent rating is added or removed", func() {
			base, _ := scoring.Aggregate(cat, model.Ratings{"A": 1}, model.IntentInformational)
			withUnscored, _ := scoring.Aggregate(cat, model.Ratings{"A": 1, "B": -1}, model.IntentInformational)
			So(withUnscored, ShouldResemble, base)
		})

		Convey("When a non-applicable signal changes value", func() {
			for _, v := range []model.Rating{-1, 0, 1, 2} {
				b, err := scoring.Aggregate(cat, model.Ratings{"A": 1, "B": v}, model.IntentCommercial)
				So(err, ShouldBeNil)
				So(b.Get(model.Trust), ShouldEqual, 50)
			}
		})

		Convey("When a rating is out of range", func() {
			_, err := scoring.Aggregate(cat, model.Ratings{"A": 3}, model.IntentCommercial)

			Convey("Then it is rejected rather than clamped", func() {
				var invalid *model.InvalidRatingError
				So(errors.As(err, &invalid), ShouldBeTrue)
				So(invalid.SignalID, ShouldEqual, "A")
				So(invalid.Value, ShouldEqual, 3)
			})
		})

		Convey("When a rating names an unknown signal", func() {
			_, err := scoring.Aggregate(cat, model.Ratings{"Z": 1}, model.IntentCommercial)
			So(errors.Is(err, catalog.ErrUnknownSignal), ShouldBeTrue)
		})

		Convey("Then the input ratings are left untouched", func() {
			in := model.Ratings{"A": 2, "B": -1}
			_, _ = scoring.Aggregate(cat, in, model.IntentInformational)
			So(in, ShouldResemble, model.Ratings{"A": 2, "B": -1})
		})
	})

	Convey("Given the default catalog with every signal at max", t, func() {
		cat := catalog.Default()
		page := cat.Scope(catalog.ScopePage)
		full := model.Ratings{}
		for _, s := range page.Signals() {
			full[s.ID] = model.RatingFull
		}

		Convey("Then every concept with an applicable signal scores 100", func() {
			for _, in := range model.Intents {
				b, err := scoring.Aggregate(page, full, in)
				So(err, ShouldBeNil)
				for _, c := range model.Concepts {
					hasApplicable := false
					for _, s := range page.Signals() {
						if s.Concept == c && scoring.Resolve(s, in).Applies {
							hasApplicable = true
						}
					}
					if hasApplicable {
						So(b.Get(c), ShouldEqual, 100)
					} else {
						So(b.Get(c), ShouldEqual, 0)
					}
				}
			}
		})

		Convey("Then manual-check signals left unscored change nothing", func() {
			withManual := full.Clone()
			for _, s := range page.Signals() {
				if s.ManualCheck {
					withManual[s.ID] = model.RatingUnscored
				}
			}
			b, err := scoring.Aggregate(page, withManual, model.IntentInformational)
			So(err, ShouldBeNil)
			for _, c := range model.Concepts {
				So(b.Get(c), ShouldBeIn, []int{0, 100})
			}
		})
	})
}

func TestDomain(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		cat := catalog.Default()

		Convey("When two pages report d5 as partial then full", func() {
			merged := scoring.MergeDomain(model.Ratings{"d5": 1}, model.Ratings{"d5": 2})
			So(merged["d5"], ShouldEqual, model.RatingFull)
		})

		Convey("When a page reports a signal as unscored", func() {
			merged := scoring.MergeDomain(model.Ratings{"d10": -1}, model.Ratings{"d1": 0})

			Convey("Then the unscored id stays absent", func() {
				_, ok := merged["d10"]
				So(ok, ShouldBeFalse)
				So(merged["d1"], ShouldEqual, model.RatingMissing)
			})
		})

		Convey("When no page supplies a value", func() {
			b, err := scoring.AggregateDomain(cat, nil)
			So(err, ShouldBeNil)

			Convey("Then absent signals count as missing and only Authority and Trust are keyed", func() {
				So(b.Keys, ShouldResemble, model.DomainConcepts)
				So(b.Get(model.Trust), ShouldEqual, 0)
				So(b.Get(model.Authority), ShouldEqual, 0)
				_, hasExperience := b.Concepts[model.Experience]
				So(hasExperience, ShouldBeFalse)
			})
		})

		Convey("When every brand signal is full", func() {
			full := model.Ratings{}
			for _, s := range cat.Scope(catalog.ScopeDomain).Signals() {
				full[s.ID] = model.RatingFull
			}
			b, err := scoring.AggregateDomain(cat, []model.Ratings{full})
			So(err, ShouldBeNil)
			So(b.Overall, ShouldEqual, 100)
		})

		Convey("When pages are added one at a time", func() {
			pages := []model.Ratings{
				{"d1": 1, "d5": 2, "d8": 0},
				{"d1": 0, "d5": 1},
				{"d1": 2, "d8": 1, "d10": -1},
				{"d2": 1},
			}

			Convey("Then the domain score never decreases", func() {
				prev := -1
				for i := range pages {
					b, err := scoring.AggregateDomain(cat, pages[:i+1])
					So(err, ShouldBeNil)
					So(b.Overall, ShouldBeGreaterThanOrEqualTo, prev)
					prev = b.Overall
				}
			})

			Convey("Then each signal keeps its best value", func() {
				merged := scoring.MergeDomain(pages...)
				So(merged, ShouldResemble, model.Ratings{"d1": 2, "d2": 1, "d5": 2, "d8": 1})
			})
		})

		Convey("When every page leaves a manual-check brand signal unscored", func() {
			page := model.Ratings{}
			for _, s := range cat.Scope(catalog.ScopeDomain).Signals() {
				page[s.ID] = model.RatingFull
			}
			page["d16"] = model.RatingUnscored
			b, err := scoring.AggregateDomain(cat, []model.Ratings{page, page.Clone()})
			So(err, ShouldBeNil)

			Convey("Then it stays out of every percentage", func() {
				So(b.Get(model.Trust), ShouldEqual, 100)
				So(b.Overall, ShouldEqual, 100)
			})

			Convey("Then it is filled as unscored rather than missing", func() {
				filled := scoring.FillDomain(cat, scoring.MergeDomain(page))
				So(filled["d16"], ShouldEqual, model.RatingUnscored)
				So(filled["d5"], ShouldEqual, model.RatingFull)
			})
		})

		Convey("When an absent brand signal is filled", func() {
			filled := scoring.FillDomain(cat, model.Ratings{})
			So(filled["d1"], ShouldEqual, model.RatingMissing)
			So(filled["d10"], ShouldEqual, model.RatingUnscored)
		})

		Convey("When domain ratings carry a page-level id", func() {
			_, err := scoring.ScoreDomain(cat, model.Ratings{"c1": 2})
			So(errors.Is(err, catalog.ErrUnknownSignal), ShouldBeTrue)
		})
	})
}

func TestAverageAndLabel(t *testing.T) {
	Convey("Given several breakdowns", t, func() {
		cat := twoSignals(t)
		a, _ := scoring.Aggregate(cat, model.Ratings{"A": 2}, model.IntentCommercial)
		b, _ := scoring.Aggregate(cat, model.Ratings{"A": 1}, model.IntentCommercial)

		Convey("Then the average is the rounded per-concept mean", func() {
			avg := scoring.Average([]scoring.Breakdown{a, b})
			So(avg.Get(model.Trust), ShouldEqual, 75)
			So(avg.Overall, ShouldEqual, 19)
		})

		Convey("Then an empty set averages to zero", func() {
			avg := scoring.Average(nil)
			So(avg.Overall, ShouldEqual, 0)
			So(avg.Keys, ShouldResemble, model.Concepts)
		})
	})

	Convey("Labels follow the score bands", t, func() {
		So(scoring.Label(100), ShouldEqual, scoring.LabelExcellent)
		So(scoring.Label(80), ShouldEqual, scoring.LabelExcellent)
		So(scoring.Label(79), ShouldEqual, scoring.LabelGood)
		So(scoring.Label(60), ShouldEqual, scoring.LabelGood)
		So(scoring.Label(40), ShouldEqual, scoring.LabelNeedsWork)
		So(scoring.Label(39), ShouldEqual, scoring.LabelPoor)
		So(scoring.Label(0), ShouldEqual, scoring.LabelPoor)
	})
}
