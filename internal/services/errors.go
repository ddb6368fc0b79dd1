package services

import "errors"

// Common service errors
var (
	ErrNotFound        = errors.New("registro não encontrado")
	ErrInvalidPassword = errors.New("senha inválida")
	ErrUnauthorized    = errors.New("não autorizado")
	ErrInvalidState    = errors.New("transição de estado inválida")
)

// ValidationError signals a strict precondition failure. Handlers map it to
// HTTP 422; the operation must not have persisted anything.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserError signals a business rule rejection meant to be shown to the
// operator as-is. Handlers map it to HTTP 400.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a UserError with the given message
func NewUserError(message string) *UserError {
	return &UserError{Message: message}
}

// IsUserError reports whether err is a UserError
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}
