package console

import "errors"

// Sentinel kinds for console input.
var (
	ErrMalformedInput = errors.New("malformed input")
	ErrInputClosed    = errors.New("input closed")
)
