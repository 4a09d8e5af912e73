package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindPaymentProvider
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindPaymentProvider:
		return "payment_provider_error"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a user-facing (French) message and an optional
// diagnostic cause that is logged but never shown to the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Available is set on insufficient stock errors.
	Available *int
	// Detail is a developer-facing diagnostic, e.g. the provider's reason.
	Detail string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a copy of the sentinel e.
func Wrap(e *Error, cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithDetail returns a copy of e carrying a developer-facing detail.
func WithDetail(e *Error, detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

// InsufficientStock returns a copy of e carrying the available stock.
func InsufficientStock(e *Error, available int) *Error {
	cp := *e
	cp.Available = &available
	return &cp
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and message so copies made by Wrap and
// InsufficientStock still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput, KindInsufficientStock:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPaymentProvider:
		return http.StatusBadGateway
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrInternal        = New(KindInternal, "Erreur interne du serveur")
	ErrUnauthenticated = New(KindUnauthenticated, "Non authentifié, veuillez vous connecter")
	ErrForbidden       = New(KindForbidden, "Accès refusé")
	ErrInvalidBody     = New(KindInvalidInput, "Requête invalide")
)
