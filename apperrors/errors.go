package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is the category of a failure. Every operation in the booking core
// returns one of these so callers can branch without string matching.
type Kind string

const (
	KindNotFound                  Kind = "not_found"
	KindForbidden                 Kind = "forbidden"
	KindInvalidStateTransition    Kind = "invalid_state_transition"
	KindMechanicNotQualified      Kind = "mechanic_not_qualified"
	KindDuplicateAssignment       Kind = "duplicate_assignment"
	KindIncompletePriceQuote      Kind = "incomplete_price_quote"
	KindPaymentVerificationFailed Kind = "payment_verification_failed"
	KindConstraintViolation       Kind = "constraint_violation"
	KindValidation                Kind = "validation"
	KindInternal                  Kind = "internal"
)

// Error carries a machine-readable code plus a human message. Internal
// details never leak to the response body.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind via sentinel comparisons built with E.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// E builds a typed error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause to a typed error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(what string) *Error {
	return E(KindNotFound, what+" not found")
}

func Forbidden(message string) *Error {
	return E(KindForbidden, message)
}

func InvalidState(message string) *Error {
	return E(KindInvalidStateTransition, message)
}

// KindOf extracts the kind from any error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func httpStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidStateTransition, KindDuplicateAssignment, KindIncompletePriceQuote:
		return http.StatusConflict
	case KindMechanicNotQualified, KindConstraintViolation, KindValidation:
		return http.StatusBadRequest
	case KindPaymentVerificationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the error as a JSON response with a stable code. Anything
// that is not an *Error is reported as a generic internal failure.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    string(KindInternal),
			"message": "Something went wrong",
		})
		return
	}
	c.JSON(httpStatus(e.Kind), gin.H{
		"code":    string(e.Kind),
		"message": e.Message,
	})
}
