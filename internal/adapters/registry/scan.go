package registry

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// scanProjected reads every row and hands the values of want, in order, to
// emit. Extra columns are ignored; a missing one is an error.
func scanProjected(rows *sql.Rows, want []string, emit func([]string)) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	idx := make([]int, len(want))
	for i, name := range want {
		idx[i] = columnIndex(cols, name)
		if idx[i] < 0 {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		values := make([]string, len(want))
		for i, j := range idx {
			values[i] = stringify(raw[j])
		}
		emit(values)
	}
	return rows.Err()
}

func columnIndex(cols []string, name string) int {
	for i, c := range cols {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}

// stringify renders a scanned value the same way on every driver.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case time.Time:
		return t.Format(dateLayout)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
