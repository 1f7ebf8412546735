package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure independently of the transport that reports it.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error is the error type returned by use cases and repositories.
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

// Is matches any *Error carrying the same code and message, so a wrapped
// repository failure still satisfies errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Invalidf builds an INVALID error with a formatted message.
func Invalidf(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
}

// WrapError keeps err as the cause of a classified failure.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrSubtaskNotFound      = NewError(ErrCodeNotFound, "subtask not found")
	ErrProjectNotFound      = NewError(ErrCodeNotFound, "project not found")
	ErrCommentNotFound      = NewError(ErrCodeNotFound, "comment not found")
	ErrNotificationNotFound = NewError(ErrCodeNotFound, "notification not found")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmailTaken           = NewError(ErrCodeConflict, "email already registered")
)

// CodeOf returns the code of the first *Error in err's chain, or INTERNAL.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr != nil {
		return dErr.Code
	}
	return ErrCodeInternal
}

func IsDomainError(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
