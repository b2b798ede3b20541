package ingest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const verdict = `{
  "intent": "commercial",
  "intentNote": "Product landing page",
  "ymyl": "shopping",
  "ymylNote": "Sells goods",
  "harmful": false,
  "harmNote": "No harmful content detected",
  "domain": {"contactAddress": 2, "ssl": 1, "accreditations": 2},
  "content": {"author": 1, "pricing": 2, "somethingNew": 2},
  "author": {"profile": 0},
  "strengths": ["clear pricing"],
  "weaknesses": ["no author bio"],
  "recommendations": ["add author bio"]
}`

func TestParse(t *testing.T) {
	Convey("Given a well-formed verdict", t, func() {
		c, err := ingest.Parse([]byte(verdict))
		So(err, ShouldBeNil)

		Convey("Then the scalar fields are decoded", func() {
			So(c.Intent, ShouldEqual, model.IntentCommercial)
			So(c.IntentNote, ShouldEqual, "Product landing page")
			So(c.YMYL, ShouldEqual, model.YMYLShopping)
			So(c.Harmful, ShouldBeFalse)
			So(c.Strengths, ShouldResemble, []string{"clear pricing"})
		})

		Convey("Then the groups carry the raw ratings", func() {
			So(c.Groups[ingest.GroupDomain]["ssl"], ShouldEqual, model.RatingPartial)
			So(c.Groups[ingest.GroupContent]["pricing"], ShouldEqual, model.RatingFull)
		})

		Convey("When mapped onto the default catalog", func() {
			cat := catalog.Default()
			page := ingest.PageRatings(cat, c)
			brand := ingest.DomainRatings(cat, c)

			Convey("Then present keys map to their signal ids", func() {
				So(page["c1"], ShouldEqual, model.RatingPartial)
				So(page["c19"], ShouldEqual, model.RatingFull)
				So(page["a1"], ShouldEqual, model.RatingMissing)
				So(brand["d1"], ShouldEqual, model.RatingFull)
				So(brand["d5"], ShouldEqual, model.RatingPartial)
				So(brand["d10"], ShouldEqual, model.RatingFull)
			})

			Convey("Then absent keys default by manual flag", func() {
				So(page["c5"], ShouldEqual, model.RatingMissing)
				So(page["c9"], ShouldEqual, model.RatingUnscored)
				So(brand["d11"], ShouldEqual, model.RatingUnscored)
				So(brand["d2"], ShouldEqual, model.RatingMissing)
			})

			Convey("Then every signal of each scope is covered and nothing else", func() {
				So(len(page), ShouldEqual, cat.Scope(catalog.ScopePage).Len())
				So(len(brand), ShouldEqual, cat.Scope(catalog.ScopeDomain).Len())
				So(cat.Check(page), ShouldBeNil)
			})

			Convey("Then Apply completes the page", func() {
				p := model.Page{ID: 3, Status: model.StatusAnalyzing, Error: "old"}
				ingest.Apply(cat, &p, c)
				So(p.Status, ShouldEqual, model.StatusComplete)
				So(p.Error, ShouldBeEmpty)
				So(p.Intent, ShouldEqual, model.IntentCommercial)
				So(p.BrandRatings["d5"], ShouldEqual, model.RatingPartial)
			})
		})
	})

	Convey("Given verdict variants", t, func() {
		Convey("When wrapped in a markdown fence", func() {
			c, err := ingest.Parse([]byte("Here you go:\n```json\n" + verdict + "\n```\n"))
			So(err, ShouldBeNil)
			So(c.Intent, ShouldEqual, model.IntentCommercial)
		})

		Convey("When the domain group uses the brand name and purpose replaces intent", func() {
			doc := `{"purpose":"informational","brand":{"ssl":2},"content":{},"author":{}}`
			c, err := ingest.Parse([]byte(doc))
			So(err, ShouldBeNil)
			So(c.Intent, ShouldEqual, model.IntentInformational)
			So(c.Groups[ingest.GroupDomain]["ssl"], ShouldEqual, model.RatingFull)
			So(c.YMYL, ShouldEqual, model.YMYLNone)
		})

		Convey("When the intent is empty", func() {
			c, err := ingest.Parse([]byte(`{"domain":{},"content":{},"author":{}}`))
			So(err, ShouldBeNil)
			So(c.Intent, ShouldEqual, model.IntentUnknown)
		})
	})

	Convey("Given malformed verdicts", t, func() {
		cases := []struct{ name, doc string }{
			{"not json", `nope`},
			{"array", `[1,2]`},
			{"unknown intent", `{"intent":"entertainment","domain":{},"content":{},"author":{}}`},
			{"unknown ymyl", `{"ymyl":"sports","domain":{},"content":{},"author":{}}`},
			{"missing group", `{"domain":{},"content":{}}`},
			{"group not object", `{"domain":[],"content":{},"author":{}}`},
			{"rating too high", `{"domain":{"ssl":3},"content":{},"author":{}}`},
			{"rating fractional", `{"domain":{"ssl":1.5},"content":{},"author":{}}`},
			{"rating string", `{"domain":{"ssl":"2"},"content":{},"author":{}}`},
			{"rating bool", `{"domain":{"ssl":true},"content":{},"author":{}}`},
			{"harmful string", `{"harmful":"no","domain":{},"content":{},"author":{}}`},
			{"strengths string", `{"strengths":"x","domain":{},"content":{},"author":{}}`},
		}
		for _, tc := range cases {
			Convey("When the verdict is "+tc.name, func() {
				_, err := ingest.Parse([]byte(tc.doc))

				Convey("Then a schema error is returned", func() {
					So(errors.Is(err, ingest.ErrSchema), ShouldBeTrue)
				})
			})
		}

		Convey("Then the error names the offending field", func() {
			_, err := ingest.Parse([]byte(`{"domain":{"ssl":3},"content":{},"author":{}}`))
			var se *ingest.SchemaError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Field, ShouldEqual, "domain.ssl")
		})
	})
}

func TestStripFencesAndPrompt(t *testing.T) {
	Convey("StripFences leaves bare JSON alone", t, func() {
		So(ingest.StripFences("  {\"a\":1}\n"), ShouldEqual, `{"a":1}`)
		So(ingest.StripFences("```\n{}\n```"), ShouldEqual, "{}")
	})

	Convey("Prompt asks for every catalog key", t, func() {
		cat := catalog.Default()
		p := ingest.Prompt(cat, "https://example.com/")
		So(p, ShouldContainSubstring, "URL: https://example.com/")
		for _, s := range cat.Signals() {
			So(p, ShouldContainSubstring, `"`+s.Key+`"`)
		}
		So(strings.Count(p, `"domain": {`), ShouldEqual, 1)
	})
}
