package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

func NewIndexedValidationError(index int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("Validation error at transaction %d: %s", index, msg)}
}

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

// Err returns nil when nothing was collected.
func (ve *ValidationErrors) Err() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	return errors.As(err, &validationErrors)
}

// NotFoundError reports a referenced entity that does not exist or is not
// visible to the requesting user.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// InvalidStateError reports an operation the current state does not allow.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string {
	return e.Msg
}

func NewInvalidStateError(msg string) error {
	return &InvalidStateError{Msg: msg}
}

func IsInvalidStateError(err error) bool {
	var invalidState *InvalidStateError
	return errors.As(err, &invalidState)
}

var (
	ErrTransactionNotFound = NewNotFoundError("Transaction")
	ErrCategoryNotFound    = NewNotFoundError("Category")
	ErrBudgetNotFound      = NewNotFoundError("Budget")
	ErrGoalNotFound        = NewNotFoundError("Goal")
)

var (
	ErrBudgetAlreadyExists  = NewInvalidStateError("A budget already exists for this category")
	ErrCategoryNameTaken    = NewInvalidStateError("A category with this name already exists")
	ErrDefaultCategory      = NewInvalidStateError("Default categories cannot be changed or deleted")
	ErrGoalCompleted        = NewInvalidStateError("A completed goal cannot be modified")
	ErrGoalAlreadyCompleted = NewInvalidStateError("Goal is already completed")
	ErrGoalTargetDateInPast = NewInvalidStateError("Target date must be in the future")
)

var (
	ErrInvalidTransactionType = NewValidationError("Type must be 'income' or 'expense'")
	ErrInvalidStatus          = NewValidationError("Status must be 'completed', 'pending' or 'cancelled'")
	ErrNegativeAmount         = NewValidationError("Amount must not be negative")
	ErrInvalidMonthsBack      = NewValidationError("Months must be at least 1")
	ErrInvalidDaysAhead       = NewValidationError("Days must be at least 1")
)
