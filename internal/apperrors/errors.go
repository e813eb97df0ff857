package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound              ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput          ErrorType = "INVALID_INPUT"
	ErrTypeUnauthorized          ErrorType = "UNAUTHORIZED"
	ErrTypeInternal              ErrorType = "INTERNAL"
	ErrTypeUnavailable           ErrorType = "UNAVAILABLE"
	ErrTypeRateLimit             ErrorType = "RATE_LIMIT"
	ErrTypeCapabilityUnavailable ErrorType = "CAPABILITY_UNAVAILABLE"
	ErrTypePermissionDenied      ErrorType = "PERMISSION_DENIED"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Unauthorized(message string, err error) *DomainError {
	return New(ErrTypeUnauthorized, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func RateLimit(message string, err error) *DomainError {
	return New(ErrTypeRateLimit, message, err)
}

func CapabilityUnavailable(message string, err error) *DomainError {
	return New(ErrTypeCapabilityUnavailable, message, err)
}

func PermissionDenied(message string, err error) *DomainError {
	return New(ErrTypePermissionDenied, message, err)
}

// StackOf returns the stack recorded where the outermost DomainError in
// err's chain was built, or nil for foreign errors.
func StackOf(err error) []byte {
	var de *DomainError
	if errors.As(err, &de) {
		return de.StackTrace()
	}
	return nil
}

// TypeOf returns the domain type of err, or INTERNAL for foreign errors.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

// Is reports whether err carries the given domain type anywhere in its chain.
func Is(err error, errType ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == errType
}

func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeInvalidInput:
		return http.StatusBadRequest
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeUnavailable:
		return http.StatusBadGateway
	case ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrTypeCapabilityUnavailable:
		return http.StatusUnprocessableEntity
	case ErrTypePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show a user; internal errors are masked.
func PublicMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) && de.Type != ErrTypeInternal {
		return de.Message
	}
	return "Internal server error"
}
