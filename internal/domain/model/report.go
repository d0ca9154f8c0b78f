package model

// RelationshipProband is the only relationship the report emits.
const RelationshipProband = "proband"

// Status values describe how a row was reconciled.
const (
	StatusMatched       = "matched"
	StatusNotInRegistry = "not_in_registry"
	StatusUnresolved    = "unresolved"
	StatusRegistryOnly  = "registry_only"
)

// Columns is the fixed header of the report, in output order.
var Columns = []string{
	"request_id",
	"cip",
	"ir_id",
	"version",
	"last_name",
	"first_name",
	"date_of_birth",
	"gender",
	"nhs_number",
	"participant_id",
	"family_id",
	"relationship",
	"status",
	"referral_date",
	"report_date",
	"comments",
	"patient_trust_id",
}

// ReconciledRow is a request joined with its participant link and at most one
// registry record.
type ReconciledRow struct {
	Request       RequestRecord
	ParticipantID string
	Registry      RegistryRecord
	Relationship  string
	Status        string
}

// Values renders the row in Columns order. Placeholder columns are always empty.
func (r ReconciledRow) Values() []string {
	return []string{
		r.Request.RequestID,
		r.Request.SourceSystemCode,
		r.Request.RequestNumber,
		r.Request.Version,
		r.Registry.LastName,
		r.Registry.FirstName,
		r.Registry.DateOfBirth,
		r.Registry.Gender,
		r.Registry.NHSNumber,
		r.ParticipantID,
		r.Request.FamilyID,
		r.Relationship,
		r.Status,
		"", // referral_date
		"", // report_date
		"", // comments
		r.Registry.TrustID,
	}
}

// Report is the reconciled table plus the participants the registry is missing.
type Report struct {
	RegistryName string
	Rows         []ReconciledRow
	Missing      []string
}
