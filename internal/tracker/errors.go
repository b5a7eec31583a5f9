package tracker

import "fmt"

// TransportError is a network level failure, including request timeouts.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("couldn't call URL %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is returned when the tracker answers with a non-success
// status code.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("invalid status code from %s: %d (%s)", e.URL, e.StatusCode, e.Status)
}

// DecodeError is returned when a response body, or a cached snapshot, is not
// the expected JSON document.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("couldn't decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
