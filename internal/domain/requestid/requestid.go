// Package requestid splits composite interpretation request ids such as
// "OPA-11585-1" into source system code, request number and version.
package requestid

import (
	"strings"
)

const (
	separator = "-"
	numTokens = 3
)

// Parts holds the three tokens of a request id, verbatim.
type Parts struct {
	Code    string
	Number  string
	Version string
}

// String rejoins the parts into the composite form.
func (p Parts) String() string {
	return strings.Join([]string{p.Code, p.Number, p.Version}, separator)
}

// Parse splits raw on "-" and requires exactly three tokens. Tokens are not
// validated or converted; "A--C" yields an empty Number.
func Parse(raw string) (Parts, error) {
	tokens := strings.Split(raw, separator)
	if len(tokens) != numTokens {
		return Parts{}, &ParseError{Value: raw, Tokens: len(tokens)}
	}
	return Parts{Code: tokens[0], Number: tokens[1], Version: tokens[2]}, nil
}
