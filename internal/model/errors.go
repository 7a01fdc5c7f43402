package model

import "errors"

// ErrInvalidInput is returned for malformed series or parameters. Callers
// should not retry: the same input always fails the same way.
var ErrInvalidInput = errors.New("invalid input")
