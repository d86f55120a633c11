// Package errs holds the pipeline error taxonomy.
//
// Every failure that crosses a task boundary is wrapped in a PipelineError
// carrying one of the sentinel kinds below, so callers can branch with
// errors.Is on either the kind or the underlying cause:
//
//	if errors.Is(err, errs.ErrConfiguration) {
//		// fatal, do not retry
//	}
package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrConfiguration marks a missing or invalid setting (API key, topic).
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalAPI marks a failure returned by the video platform API.
	ErrExternalAPI = errors.New("external api error")
	// ErrStore marks a connection or operation failure against the document store.
	ErrStore = errors.New("store error")
	// ErrFileSystem marks topic/artifact file failures.
	ErrFileSystem = errors.New("filesystem error")
	// ErrRunInProgress is returned when another run holds the pipeline lock.
	ErrRunInProgress = errors.New("pipeline run already in progress")
)

// PipelineError wraps an error with its kind and the operation that failed.
type PipelineError struct {
	Kind error
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func wrap(kind error, op string, err error) error {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) error { return wrap(ErrConfiguration, op, err) }
func ExternalAPI(op string, err error) error   { return wrap(ErrExternalAPI, op, err) }
func Store(op string, err error) error         { return wrap(ErrStore, op, err) }
func FileSystem(op string, err error) error    { return wrap(ErrFileSystem, op, err) }

// Kind reports the taxonomy kind of err, or nil when err is not classified.
func Kind(err error) error {
	for _, k := range []error{ErrConfiguration, ErrExternalAPI, ErrStore, ErrFileSystem, ErrRunInProgress} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
