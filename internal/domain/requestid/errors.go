package requestid

import (
	"errors"
	"fmt"
)

// ErrMalformed is the sentinel wrapped by every ParseError.
var ErrMalformed = errors.New("malformed request id")

// ParseError reports a request id with the wrong number of tokens.
type ParseError struct {
	Value  string
	Tokens int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: expected %d tokens, got %d", ErrMalformed, e.Value, numTokens, e.Tokens)
}

func (e *ParseError) Unwrap() error { return ErrMalformed }
