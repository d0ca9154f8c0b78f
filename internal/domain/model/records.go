// Package model contains domain models passed between layers.
package model

// RequestRecord is one parsed row of the input file.
// RequestID has the form <SourceSystemCode>-<RequestNumber>-<Version>.
type RequestRecord struct {
	Row              int    // 1-based data row, header excluded
	RequestID        string // composite id as read, e.g. "OPA-11585-1"
	SourceSystemCode string // "OPA"
	RequestNumber    string // "11585"
	Version          string // "1"
	FamilyID         string // passed through unchanged
}

// ParticipantLink is the resolver's answer for one request number.
// An empty ParticipantID means no participant could be resolved.
type ParticipantLink struct {
	RequestNumber string
	ParticipantID string
}

// Resolved reports whether the link carries a participant id.
func (l ParticipantLink) Resolved() bool {
	return l.ParticipantID != ""
}

// RegistryRecord is one registry row projected to the fields the report needs.
// NHSNumber and Gender are only filled by demographic enrichment.
type RegistryRecord struct {
	TrustID       string
	LastName      string
	FirstName     string
	DateOfBirth   string
	ParticipantID string
	NHSNumber     string
	Gender        string
}
