package weather

import (
	"errors"
	"fmt"
)

// HTTPStatusError is returned when an upstream answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d %s", e.URL, e.StatusCode, e.Status)
}

// TransportError wraps a connection level failure.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError is returned when a successful response lacks required fields.
type SchemaError struct {
	Document string
	URL      string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s document from %s: %v", e.Document, e.URL, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ErrorKind classifies err for logs and metrics.
func ErrorKind(err error) string {
	var (
		statusErr    *HTTPStatusError
		transportErr *TransportError
		schemaErr    *SchemaError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.Is(err, errBranchPanic):
		return "panic"
	default:
		return "other"
	}
}

var errBranchPanic = errors.New("branch panicked")
