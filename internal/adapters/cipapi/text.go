package cipapi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a scalar JSON value read as a string. Strings are taken verbatim,
// numbers and booleans by their literal, and null, objects or arrays become
// "". Decoding never fails, so a field changing type upstream cannot break
// the list envelope.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = ""
			return nil
		}
		*t = Text(s)
	case '{', '[', 'n':
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

// String returns the value with surrounding whitespace removed.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}
