package transport

import "errors"

// ErrUnexpectedStatus wraps non-200 responses.
var ErrUnexpectedStatus = errors.New("unexpected status")
