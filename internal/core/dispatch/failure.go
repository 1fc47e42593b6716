package dispatch

import (
	"errors"
	"fmt"
	"net/http"
)

// BackendFailure is the outcome of a backend call that did not return 2xx
// transport failures carry a synthesized status: 504 for timeouts, 502 otherwise
type BackendFailure struct {
	Method  string
	URL     string
	Status  int
	Header  http.Header
	Body    []byte
	Timeout bool
	Err     error
}

func (f *BackendFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("backend %s %s: %d: %v", f.Method, f.URL, f.Status, f.Err)
	}
	return fmt.Sprintf("backend %s %s: %d", f.Method, f.URL, f.Status)
}

func (f *BackendFailure) Unwrap() error { return f.Err }

// ContentType returns the backend's content type, if any
func (f *BackendFailure) ContentType() string { return f.Header.Get("Content-Type") }

// AsFailure extracts a BackendFailure from err's chain
func AsFailure(err error) (*BackendFailure, bool) {
	var f *BackendFailure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
