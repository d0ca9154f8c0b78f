package service

import "errors"

// ErrNotConfigured is returned by Run when a collaborator is missing.
var ErrNotConfigured = errors.New("service needs a resolver and a registry")
