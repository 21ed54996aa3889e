package upstream

import (
	"errors"
	"fmt"
)

// ErrMalformed marks documents that are not valid JSON or violate the
// upstream schema.
var ErrMalformed = errors.New("malformed upstream document")

// FetchError reports a failure to retrieve or decode an upstream document.
type FetchError struct {
	Source     string // URL or path of the document
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
