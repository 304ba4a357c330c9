package domain

import (
	"errors"
	"fmt"
)

// ErrWriteRejected is returned inside a PersistenceError when the backend refuses
// a write. The reason (missing identity, row policy, dangling reference) is not exposed.
var ErrWriteRejected = errors.New("write rejected by backend")

// AIGatewayError reports a transport or auth failure talking to the AI provider.
type AIGatewayError struct {
	Op  string
	Err error
}

func (e *AIGatewayError) Error() string {
	return fmt.Sprintf("ai gateway %s: %v", e.Op, e.Err)
}

func (e *AIGatewayError) Unwrap() error { return e.Err }

// PersistenceError reports a network, auth or policy failure against the backend.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError rejects input before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ResponseFormatError describes model output that could not be parsed as an
// analysis object. It never leaves the gateway; callers receive the fallback result.
type ResponseFormatError struct {
	Raw string
	Err error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("unparseable model response: %v", e.Err)
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}

// IsAIGateway reports whether err is an AIGatewayError.
func IsAIGateway(err error) bool {
	var g *AIGatewayError
	return errors.As(err, &g)
}
