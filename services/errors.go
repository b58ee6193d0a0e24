package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to handlers. Every service failure is either one of
// these (wrapped with a message) or a storage error reported as internal.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// ServiceError pairs an error kind with a human-readable message.
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func notFoundErr(format string, args ...interface{}) error {
	return &ServiceError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictErr(format string, args ...interface{}) error {
	return &ServiceError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...interface{}) error {
	return &ServiceError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}
