package loader

import "fmt"

// NetworkError means the document could not be retrieved at all.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchError means the server answered with a non-200 status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading %s: HTTP error! status: %d", e.URL, e.StatusCode)
}

// ParseError means the body was received but is not valid JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errorKind labels an error for the errors_total metric.
// SizeError means the body is larger than the fetcher accepts.
type SizeError struct {
	URL   string
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("loading %s: document exceeds %d bytes", e.URL, e.Limit)
}

func errorKind(err error) string {
	switch err.(type) {
	case *FetchError:
		return "fetch"
	case *SizeError:
		return "size"
	case *ParseError:
		return "parse"
	default:
		return "network"
	}
}
