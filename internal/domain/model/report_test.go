package model_test

import (
	"testing"

	model "github.com/okian/gwrecon/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestReconciledRowValues(t *testing.T) {
	convey.Convey("Given a matched row", t, func() {
		row := model.ReconciledRow{
			Request: model.RequestRecord{
				RequestID:        "OPA-11585-1",
				SourceSystemCode: "OPA",
				RequestNumber:    "11585",
				Version:          "1",
				FamilyID:         "203351",
			},
			ParticipantID: "P001",
			Registry: model.RegistryRecord{
				TrustID:       "T99",
				LastName:      "Doe",
				FirstName:     "Jane",
				DateOfBirth:   "1980-01-01",
				ParticipantID: "P001",
			},
			Relationship: model.RelationshipProband,
			Status:       model.StatusMatched,
		}

		convey.Convey("When rendered", func() {
			values := row.Values()

			convey.Convey("Then it should follow the column schema", func() {
				convey.So(len(values), convey.ShouldEqual, len(model.Columns))
				convey.So(values, convey.ShouldResemble, []string{
					"OPA-11585-1", "OPA", "11585", "1",
					"Doe", "Jane", "1980-01-01", "", "",
					"P001", "203351", "proband", "matched",
					"", "", "",
					"T99",
				})
			})
		})
	})

	convey.Convey("Given an empty row", t, func() {
		values := model.ReconciledRow{}.Values()

		convey.Convey("Then every column should still be present", func() {
			convey.So(len(values), convey.ShouldEqual, len(model.Columns))
			for _, v := range values {
				convey.So(v, convey.ShouldBeEmpty)
			}
		})
	})
}

func TestParticipantLink(t *testing.T) {
	convey.Convey("Given participant links", t, func() {
		convey.So(model.ParticipantLink{RequestNumber: "1", ParticipantID: "P1"}.Resolved(), convey.ShouldBeTrue)
		convey.So(model.ParticipantLink{RequestNumber: "1"}.Resolved(), convey.ShouldBeFalse)
	})
}
