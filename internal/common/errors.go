package common

import (
	"errors"
	"fmt"
)

var (
	// Record access errors. Both are non-fatal: nothing was written.
	ErrNotFound         = errors.New("not found")
	ErrMissingReference = errors.New("missing referenced entity")
	ErrValidation       = errors.New("validation error")

	// Sync errors.
	ErrUnauthenticated = errors.New("unauthenticated: no local user")
)

// StoreOpenErrorKind classifies why the local store could not be opened.
type StoreOpenErrorKind string

const (
	StoreOpenFailed    StoreOpenErrorKind = "open"
	StoreCorrupt       StoreOpenErrorKind = "corrupt"
	StoreBusy          StoreOpenErrorKind = "busy"
	StoreMigrationFail StoreOpenErrorKind = "migration"
)

// StoreOpenError is returned when the embedded database cannot be opened or
// migrated. The handle is never cached after such an error.
type StoreOpenError struct {
	Path string
	Kind StoreOpenErrorKind
	Err  error
}

func (e *StoreOpenError) Error() string {
	return fmt.Sprintf("open store %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *StoreOpenError) Unwrap() error { return e.Err }

// Retryable reports whether opening again later may succeed without
// intervention (another process holds the file lock).
func (e *StoreOpenError) Retryable() bool {
	return e.Kind == StoreBusy
}

// RemoteRequestError describes a failed call to the backend API, either at the
// transport level (Status == 0) or as a server-reported failure.
type RemoteRequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteRequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *RemoteRequestError) Unwrap() error { return e.Err }
