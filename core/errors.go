package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when inserting a record whose identifier
	// already exists in the table.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrNotFound is returned when merging into a record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidArgument is returned by query builder methods given malformed
	// input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// DuplicateIDError reports an insert against an identifier already in use.
type DuplicateIDError struct {
	Collection string
	ID         string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrDuplicateID, e.Collection, e.ID)
}

// Is makes errors.Is(err, ErrDuplicateID) hold.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// NotFoundError reports a merge against a missing record.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrNotFound, e.Collection, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidArgumentError reports a rejected builder argument.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidArgument, e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalidArgument) hold.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
