package servicemonitor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jpalmerr/servicemonitor/internal/poller"
)

// Reconciliation and storage errors. Match them with errors.Is; the typed
// errors below carry the details.
var (
	// ErrBadConfigFormat means a config line does not have the
	// identifier|name|url shape.
	ErrBadConfigFormat = errors.New("bad config format")

	// ErrUnrecognizedServiceKind means a config line names a service kind
	// that has no extractor.
	ErrUnrecognizedServiceKind = errors.New("unrecognized service kind")

	// ErrDuplicateService means the same identifier or display name appears
	// twice in one config.
	ErrDuplicateService = errors.New("duplicate service")

	// ErrStorageUnavailable means a snapshot could not be read: it is missing,
	// corrupt, or written by an unsupported schema version.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStatusNotFound means the page was fetched but the status selector
	// matched nothing.
	ErrStatusNotFound = errors.New("status not found")
)

// Fetch errors, recovered inside [Service.Poll] and written into history.
var (
	ErrConnectionFailure = poller.ErrConnectionFailure
	ErrTimeout           = poller.ErrTimeout
	ErrInvalidURL        = poller.ErrInvalidURL
	ErrNoContent         = poller.ErrNoContent
)

// BadConfigError reports a malformed config line. Line is 1-based.
type BadConfigError struct {
	Line int
}

func (e *BadConfigError) Error() string {
	return fmt.Sprintf("line %d of config file does not have required format: identifier|name|url", e.Line)
}

func (e *BadConfigError) Unwrap() error { return ErrBadConfigFormat }

// UnrecognizedKindError reports an identifier outside the supported set.
type UnrecognizedKindError struct {
	Identifier string
	Line       int
	Supported  []Kind
}

func (e *UnrecognizedKindError) Error() string {
	names := make([]string, len(e.Supported))
	for i, k := range e.Supported {
		names[i] = string(k)
	}
	return fmt.Sprintf("service with identifier %q unrecognized, supported services are: [%s]",
		e.Identifier, strings.Join(names, ", "))
}

func (e *UnrecognizedKindError) Unwrap() error { return ErrUnrecognizedServiceKind }

// DuplicateServiceError reports an identifier configured more than once.
type DuplicateServiceError struct {
	Identifier Kind
	Line       int
	FirstLine  int
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("line %d of config file repeats service %q first configured on line %d",
		e.Line, e.Identifier, e.FirstLine)
}

func (e *DuplicateServiceError) Unwrap() error { return ErrDuplicateService }

// DuplicateNameError reports a display name shared by two services. History
// lines identify services by name only, so names must be unique.
type DuplicateNameError struct {
	Name      string
	Line      int
	FirstLine int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("line %d of config file repeats service name %q first used on line %d",
		e.Line, e.Name, e.FirstLine)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateService }
