// Package csvfile reads request lists and writes reconciliation reports.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/gwrecon/internal/domain/model"
	"github.com/okian/gwrecon/internal/domain/requestid"
)

// Input header names.
const (
	ColRequestID = "request_id"
	ColFamilyID  = "family_id"
)

// ReadRequests parses a request list. The header must name request_id and
// family_id; other columns are ignored. The first malformed request id aborts
// the read with an error naming the data row.
func ReadRequests(r io.Reader) ([]model.RequestRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idCol, famCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case ColRequestID:
			idCol = i
		case ColFamilyID:
			famCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColRequestID)
	}
	if famCol < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColFamilyID)
	}

	var out []model.RequestRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if isBlank(fields) {
			continue
		}

		raw := field(fields, idCol)
		parts, err := requestid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, model.RequestRecord{
			Row:              row,
			RequestID:        raw,
			SourceSystemCode: parts.Code,
			RequestNumber:    parts.Number,
			Version:          parts.Version,
			FamilyID:         field(fields, famCol),
		})
	}
}

// ReadFile reads the request list at path.
func ReadFile(path string) ([]model.RequestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRequests(f)
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
