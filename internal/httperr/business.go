package httperr

import "errors"

// Kind classifies a failure independently of the transport.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindUnavailable  Kind = "unavailable"
	KindCanceled     Kind = "canceled"
	KindInternal     Kind = "internal"
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e BusinessError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

func ErrBusiness(kind Kind, code, message string) error {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func InvalidInput(code, message string) error {
	return ErrBusiness(KindInvalidInput, code, message)
}

func Conflict(code, message string) error {
	return ErrBusiness(KindConflict, code, message)
}

func NotFoundErr(code, message string) error {
	return ErrBusiness(KindNotFound, code, message)
}

func UnauthorizedErr(code, message string) error {
	return ErrBusiness(KindUnauthorized, code, message)
}

func Forbidden(code, message string) error {
	return ErrBusiness(KindForbidden, code, message)
}

// Unavailable wraps a transient dependency failure. Callers may retry.
func Unavailable(code string, err error) error {
	return BusinessError{
		Kind:    KindUnavailable,
		Code:    code,
		Message: "Service temporarily unavailable, try again.",
		Err:     err,
	}
}

// Canceled marks work abandoned because the caller went away. It is not
// retried and not worth a warning.
func Canceled(err error) error {
	return BusinessError{
		Kind:    KindCanceled,
		Code:    "request_canceled",
		Message: "Request canceled.",
		Err:     err,
	}
}

func InternalErr(code string, err error) error {
	return BusinessError{
		Kind:    KindInternal,
		Code:    code,
		Message: "Unexpected error.",
		Err:     err,
	}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf reports the kind of err; anything unclassified is internal.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}
