package requestid_test

import (
	"errors"
	"testing"

	"github.com/okian/gwrecon/internal/domain/requestid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given well formed request ids", t, func() {
		ids := []string{"OPA-11585-1", "OPA-11612-1", "SAP-7-12", "A-B-C"}

		Convey("When parsing each one", func() {
			for _, id := range ids {
				parts, err := requestid.Parse(id)

				Convey("Then "+id+" should split into three verbatim tokens and rejoin", func() {
					So(err, ShouldBeNil)
					So(parts.String(), ShouldEqual, id)
				})
			}
		})

		Convey("When parsing OPA-11585-1", func() {
			parts, err := requestid.Parse("OPA-11585-1")

			Convey("Then the fields should be extracted in order", func() {
				So(err, ShouldBeNil)
				So(parts, ShouldResemble, requestid.Parts{Code: "OPA", Number: "11585", Version: "1"})
			})
		})

		Convey("When a token is empty", func() {
			parts, err := requestid.Parse("OPA--1")

			Convey("Then it should still parse without validation", func() {
				So(err, ShouldBeNil)
				So(parts.Number, ShouldEqual, "")
				So(parts.String(), ShouldEqual, "OPA--1")
			})
		})

		Convey("When tokens carry leading zeros", func() {
			parts, err := requestid.Parse("OPA-00042-01")

			Convey("Then they should not be coerced", func() {
				So(err, ShouldBeNil)
				So(parts.Number, ShouldEqual, "00042")
				So(parts.Version, ShouldEqual, "01")
			})
		})
	})

	Convey("Given malformed request ids", t, func() {
		cases := map[string]int{
			"":              1,
			"OPA11585":      1,
			"OPA-11585":     2,
			"OPA-11585-1-2": 4,
			"---":           4,
		}

		for raw, tokens := range cases {
			raw, tokens := raw, tokens
			Convey("When parsing "+`"`+raw+`"`, func() {
				_, err := requestid.Parse(raw)

				Convey("Then it should fail with a ParseError", func() {
					So(err, ShouldNotBeNil)
					So(errors.Is(err, requestid.ErrMalformed), ShouldBeTrue)

					var pe *requestid.ParseError
					So(errors.As(err, &pe), ShouldBeTrue)
					So(pe.Tokens, ShouldEqual, tokens)
					So(pe.Value, ShouldEqual, raw)
				})
			})
		}
	})
}
