package services

import (
	"errors"
	"fmt"
)

// Ошибки предметной области. Хендлеры переводят их в HTTP-статусы через errors.Is.
var (
	ErrDuplicateAccount           = errors.New("email already exists")
	ErrInvalidCredentials         = errors.New("invalid credentials")
	ErrAccountNotFound            = errors.New("account not found")
	ErrInvalidOrExpiredToken      = errors.New("invalid or expired token")
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
	ErrUnauthorized               = errors.New("unauthorized")

	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Error: ошибка предметной области с сообщением для клиента.
// errors.Is(err, ErrValidation) и т.п. работают через Unwrap.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
