package services

import (
	"errors"
	"fmt"

	"juaconnect-server/models"
)

// ValidationError reports input that does not have the expected shape or value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports an unknown id.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidTransitionError reports a lifecycle transition that is not legal
// from the request's current status.
type InvalidTransitionError struct {
	RequestID uint
	From      models.ServiceRequestStatus
	To        models.ServiceRequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("service request %d cannot move from %s to %s", e.RequestID, e.From, e.To)
}

// StorageError reports a persistence failure. When returned from a mutation
// the in-memory change has been kept and Marketplace.Flush can retry saving it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is or wraps an *InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsStorage reports whether err is or wraps a *StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
