package convert

import (
	"errors"
	"fmt"
)

// CallerError reports invalid caller input: an unknown file kind or an
// unsupported (kind, sourceExt, targetFormat) combination. Handlers map
// it to HTTP 400.
type CallerError struct {
	Message      string
	Kind         string
	SourceFormat string
	TargetFormat string
}

func (e *CallerError) Error() string { return e.Message }

// AdapterError wraps a failure inside a converter adapter. Handlers map
// it to HTTP 500.
type AdapterError struct {
	Op  string
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

func callerErrorf(kind, source, target, format string, args ...interface{}) *CallerError {
	return &CallerError{
		Message:      fmt.Sprintf(format, args...),
		Kind:         kind,
		SourceFormat: source,
		TargetFormat: target,
	}
}

func adapterErrorf(op string, err error) *AdapterError {
	return &AdapterError{Op: op, Err: err}
}

// IsCallerError reports whether err is (or wraps) a CallerError.
func IsCallerError(err error) bool {
	var ce *CallerError
	return errors.As(err, &ce)
}
