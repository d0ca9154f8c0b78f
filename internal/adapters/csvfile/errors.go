package csvfile

import "errors"

// ErrMissingColumn is returned when the input header lacks a required column.
var ErrMissingColumn = errors.New("input missing required column")
