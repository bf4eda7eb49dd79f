package savant

import "errors"

// ErrMalformedResponse signals a CSV body missing required columns or with
// unparsable values.
var ErrMalformedResponse = errors.New("malformed statcast response")
