package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/okian/gwrecon/internal/domain/model"
)

// NoticeFormat renders one missing participant line.
const NoticeFormat = "Participant %s not in %s\n"

// WriteReport writes the table followed by the missing participant notices.
func WriteReport(w io.Writer, report model.Report) error {
	if err := writeTable(w, report); err != nil {
		return err
	}
	return writeNotices(w, report)
}

// WriteFile writes report to path in two phases: the table replaces any
// existing file, then the notices are appended to it.
func WriteFile(path string, report model.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeTable(f, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if len(report.Missing) == 0 {
		return nil
	}
	f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return writeNotices(f, report)
}

func writeTable(w io.Writer, report model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range report.Rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

func writeNotices(w io.Writer, report model.Report) error {
	for _, id := range report.Missing {
		if _, err := fmt.Fprintf(w, NoticeFormat, id, report.RegistryName); err != nil {
			return fmt.Errorf("write notice: %w", err)
		}
	}
	return nil
}
