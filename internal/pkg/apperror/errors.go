package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeValidation      ErrorCode = "VALIDATION"
	ErrCodeDuplicate       ErrorCode = "DUPLICATE"
	ErrCodeAlreadyVoted    ErrorCode = "ALREADY_VOTED"
	ErrCodeAlreadyDecided  ErrorCode = "ALREADY_DECIDED"
	ErrCodeExpired         ErrorCode = "EXPIRED"
	ErrCodeConflict        ErrorCode = "CONFLICT"
	ErrCodeInternal        ErrorCode = "INTERNAL"
)

// AppError несёт код ошибки, HTTP статус и (для конфликтов)
// актуальное состояние сущности на момент отказа.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	State      interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// WithState прикрепляет актуальное состояние сущности к ошибке конфликта.
func WithState(code ErrorCode, message string, state interface{}) *AppError {
	e := New(code, message)
	e.State = state
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeDuplicate, ErrCodeAlreadyVoted, ErrCodeAlreadyDecided, ErrCodeExpired, ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsConflict(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.HTTPStatus == http.StatusConflict
}

// As извлекает AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

var (
	ErrContentNotFound  = New(ErrCodeNotFound, "контент не найден")
	ErrFlagNotFound     = New(ErrCodeNotFound, "жалоба не найдена")
	ErrAppealNotFound   = New(ErrCodeNotFound, "апелляция не найдена")
	ErrUserNotFound     = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthenticated  = New(ErrCodeUnauthenticated, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")
	ErrSelfVote         = New(ErrCodeForbidden, "нельзя голосовать по собственной апелляции")
)
