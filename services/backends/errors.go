package backends

import "errors"

var (
	// ErrUnknownBackend is returned for identifiers outside the configured
	// backend set. It is a validation failure and never triggers fallback.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrTimeout marks a dispatch that exceeded its allotted time.
	ErrTimeout = errors.New("backend call timed out")

	// ErrConstruction marks a backend that could not be instantiated.
	ErrConstruction = errors.New("backend construction failed")
)

// BackendError wraps an error with the backend it came from.
type BackendError struct {
	Backend string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return e.Backend + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Backend + ": " + e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError creates a new BackendError
func NewBackendError(backend, message string, err error) *BackendError {
	return &BackendError{
		Backend: backend,
		Message: message,
		Err:     err,
	}
}
