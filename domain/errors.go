package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrBoardNotFound   = NewError(ErrCodeNotFound, "board not found")
	ErrColumnNotFound  = NewError(ErrCodeNotFound, "column not found")
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")

	ErrNotMember              = NewError(ErrCodeForbidden, "you are not a member of this board")
	ErrOwnerRequired          = NewError(ErrCodeForbidden, "only board owners can perform this action")
	ErrOwnerRoleNotAssignable = NewError(ErrCodeForbidden, "cannot assign OWNER role to members")
	ErrForeignBoard           = NewError(ErrCodeForbidden, "membership does not cover this board")

	ErrAlreadyMember     = NewError(ErrCodeConflict, "user is already a member of this board")
	ErrEmailTaken        = NewError(ErrCodeConflict, "email is already registered")
	ErrMovedConcurrently = NewError(ErrCodeConflict, "task was moved concurrently, retry the request")

	ErrCrossBoardMove      = NewError(ErrCodeInvalid, "cannot move task to a column in a different board")
	ErrColumnBoardMismatch = NewError(ErrCodeInvalid, "column does not belong to the specified board")
	ErrPositionOutOfRange  = NewError(ErrCodeInvalid, "position is out of range")
	ErrInvalidRole         = NewError(ErrCodeInvalid, "invalid board role")
	ErrInvalidStatus       = NewError(ErrCodeInvalid, "invalid task status")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")

	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
