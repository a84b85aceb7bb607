package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindNotAvailable
	KindProviderMismatch
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNotAvailable:
		return "not_available"
	case KindProviderMismatch:
		return "provider_mismatch"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code returned by the API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindProviderMismatch:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindNotAvailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the general classified error. Packages with richer payloads
// (e.g. a listing id) define their own types and expose Kind().
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

type kinded interface {
	error
	ErrorKind() Kind
}

func (e *Error) ErrorKind() Kind { return e.Kind }

// KindOf returns the kind of the first classified error in err's chain,
// KindInternal when there is none.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindInternal
}

// PublicMessage is the text safe to return to API callers.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Message != "" {
		return e.Message
	}
	var k kinded
	if errors.As(err, &k) && k.ErrorKind() != KindInternal {
		return k.Error()
	}
	return "internal server error"
}

// DetailsOf returns structured details attached to a classified error.
func DetailsOf(err error) any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func ValidationWith(msg string, details any) error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Unauthenticated(msg string) error { return &Error{Kind: KindAuthentication, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindAuthorization, Message: msg} }

func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected failure; its text never reaches callers
// outside development mode.
func Internal(err error) error { return &Error{Kind: KindInternal, Err: err} }
