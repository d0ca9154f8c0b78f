package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrUnsupportedDriver = errors.New("unsupported registry driver")
	ErrConfig            = errors.New("invalid registry config")
	ErrUnavailable       = errors.New("registry unavailable")
	ErrMissingColumn     = errors.New("registry result is missing a column")
)
