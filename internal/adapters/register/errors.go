package register

import "errors"

// Sentinel kinds for player lookup.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidName    = errors.New("name must contain a first and last name")
	ErrMalformedFile  = errors.New("malformed register file")
)
