package export

import "errors"

// ErrMalformedFile signals a CSV file that cannot be read back as a table.
var ErrMalformedFile = errors.New("malformed table file")
