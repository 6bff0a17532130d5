package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across the error taxonomy
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrMalformed    = errors.New("malformed record")
	ErrInvalidStage = errors.New("invalid stage")
	ErrHost         = errors.New("host operation failed")
)

// ValidationError reports bad direct input (empty names, unknown channels, ...)
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing directory, record, or file.
// Kind is a short noun ("asset", "catalog directory", "prop") and Key what was looked up.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError builds a NotFoundError
func NewNotFoundError(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// MalformedRecordError reports a metadata document that could not be parsed
type MalformedRecordError struct {
	Path string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %v", e.Path, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformed }

// InvalidStageError reports a stage token outside the pipeline's closed set
type InvalidStageError struct {
	Stage string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid stage %q (expected one of %s)", e.Stage, stageList())
}

func (e *InvalidStageError) Is(target error) bool { return target == ErrInvalidStage }

// HostOperationError wraps a failure reported by a host capability verbatim
type HostOperationError struct {
	Op  string
	Err error
}

func (e *HostOperationError) Error() string {
	return fmt.Sprintf("host %s: %v", e.Op, e.Err)
}

func (e *HostOperationError) Unwrap() error { return e.Err }

func (e *HostOperationError) Is(target error) bool { return target == ErrHost }

// WrapHost wraps err as a HostOperationError. A nil err stays nil and an error that
// is already a HostOperationError is returned unchanged.
func WrapHost(op string, err error) error {
	if err == nil {
		return nil
	}
	var hostErr *HostOperationError
	if errors.As(err, &hostErr) {
		return err
	}
	return &HostOperationError{Op: op, Err: err}
}
