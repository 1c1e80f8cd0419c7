package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type (
	// Wire shape for every error response. Message stays short and
	// field-scoped; internal error text never crosses this boundary.
	Error struct {
		Fields  *map[string]string `json:"fields,omitempty" validate:"optional"`
		Message string             `json:"message"          validate:"required"`
	}
)

func StringError(err string) Error {
	return Error{Message: err}
}

func ValidationError(err error) Error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if ok {
		errorMap := make(map[string]string)
		for _, fieldError := range validationErrors {
			errorMap[fieldError.Field()] = fmt.Sprintf(
				"Failed to validate while checking condition: %s",
				fieldError.Tag(),
			)
		}

		return Error{Message: "validation error", Fields: &errorMap}
	}

	return Error{Message: "validation error"}
}

// FieldError is a client-correctable rejection of one submission field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

// AsFieldError unwraps err into a *FieldError if one is in the chain.
func AsFieldError(err error) (*FieldError, bool) {
	var fieldErr *FieldError
	ok := errors.As(err, &fieldErr)
	return fieldErr, ok
}

type AuthErrorKind string

const (
	AuthMissing AuthErrorKind = "missing"
	AuthExpired AuthErrorKind = "expired"
	AuthInvalid AuthErrorKind = "invalid"
)

// AuthError is any bearer-token rejection from the access gate.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: token is %s", e.Kind)
}

func NewAuthError(kind AuthErrorKind) *AuthError {
	return &AuthError{Kind: kind}
}

// ErrPersistence marks server-side storage failures. Callers wrap it so the
// transport maps the whole chain to a generic 500.
var ErrPersistence = errors.New("persistence failure")
