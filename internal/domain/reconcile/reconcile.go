// Package reconcile joins parsed requests, resolved participant links and
// registry records into the report table.
//
// The join is a full outer join keyed on participant id:
//   - every request appears at least once, in input order;
//   - a participant with several registry records fans out to one row per
//     record, in registry order;
//   - a request without a participant id never matches a registry record;
//   - registry records nobody asked for are appended after all requests.
//
// Resolved participant ids with no registry record are reported in
// Report.Missing in first-seen order.
package reconcile

import (
	"fmt"

	"github.com/okian/gwrecon/internal/domain/dedupe"
	"github.com/okian/gwrecon/internal/domain/model"
)

// DefaultRegistryName is used in reports when no name is configured.
const DefaultRegistryName = "GeneWorks"

type options struct {
	registryName string
}

// Option configures Reconcile.
type Option func(*options)

// WithRegistryName sets the registry name carried on the report.
func WithRegistryName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.registryName = name
		}
	}
}

// Reconcile builds the report. links must be positionally aligned with
// requests (links[i] resolves requests[i]).
func Reconcile(requests []model.RequestRecord, links []model.ParticipantLink, records []model.RegistryRecord, opts ...Option) (model.Report, error) {
	o := options{registryName: DefaultRegistryName}
	for _, opt := range opts {
		opt(&o)
	}

	if len(links) != len(requests) {
		return model.Report{}, fmt.Errorf("%w: %d requests, %d links", ErrMisaligned, len(requests), len(links))
	}

	byParticipant := make(map[string][]int, len(records))
	for i, rec := range records {
		if rec.ParticipantID == "" {
			continue
		}
		byParticipant[rec.ParticipantID] = append(byParticipant[rec.ParticipantID], i)
	}

	used := make([]bool, len(records))
	missing := dedupe.New()
	rows := make([]model.ReconciledRow, 0, len(requests))

	for i, req := range requests {
		link := links[i]
		if link.RequestNumber != req.RequestNumber {
			return model.Report{}, fmt.Errorf("%w: row %d request number %q, link %q",
				ErrMisaligned, req.Row, req.RequestNumber, link.RequestNumber)
		}

		row := model.ReconciledRow{
			Request:       req,
			ParticipantID: link.ParticipantID,
			Relationship:  model.RelationshipProband,
		}

		if !link.Resolved() {
			row.Status = model.StatusUnresolved
			rows = append(rows, row)
			continue
		}

		matches := byParticipant[link.ParticipantID]
		if len(matches) == 0 {
			row.Status = model.StatusNotInRegistry
			missing.SeenAndRecord(link.ParticipantID)
			rows = append(rows, row)
			continue
		}

		for _, idx := range matches {
			used[idx] = true
			matched := row
			matched.Registry = records[idx]
			matched.Status = model.StatusMatched
			rows = append(rows, matched)
		}
	}

	for i, rec := range records {
		if used[i] {
			continue
		}
		rows = append(rows, model.ReconciledRow{
			ParticipantID: rec.ParticipantID,
			Registry:      rec,
			Relationship:  model.RelationshipProband,
			Status:        model.StatusRegistryOnly,
		})
	}

	return model.Report{
		RegistryName: o.registryName,
		Rows:         rows,
		Missing:      missing.Values(),
	}, nil
}

// ParticipantIDs returns the distinct resolved participant ids in link order.
// This is the key set the registry read is filtered against.
func ParticipantIDs(links []model.ParticipantLink) []string {
	d := dedupe.New(dedupe.WithCapacity(len(links)))
	for _, l := range links {
		d.SeenAndRecord(l.ParticipantID)
	}
	return d.Values()
}
