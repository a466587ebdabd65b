package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies engine failures so handlers can map them to HTTP
// statuses and clients can render a meaningful message.
type ErrorKind string

const (
	ErrNotFound     ErrorKind = "not_found"     // unknown identity
	ErrConflict     ErrorKind = "conflict"      // duplicate name / slot race
	ErrCapacity     ErrorKind = "capacity"      // slot bounds exceeded
	ErrIneligible   ErrorKind = "ineligible"    // game-type mismatch or agent committed elsewhere
	ErrAuthFailed   ErrorKind = "auth_failed"   // bad password or credential
	ErrInvalidState ErrorKind = "invalid_state" // operation illegal for current lifecycle state
	ErrInvalidOrder ErrorKind = "invalid_order" // non-monotonic turn index
	ErrBusy         ErrorKind = "busy"          // per-match lock contention timeout
)

// EngineError is the error type every engine operation returns on a domain
// failure. Infrastructure failures (DB down etc.) stay plain wrapped errors.
type EngineError struct {
	Kind    ErrorKind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewEngineError(kind ErrorKind, format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrConflict, format, args...)
}

func Capacityf(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrCapacity, format, args...)
}

func Ineligiblef(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrIneligible, format, args...)
}

func AuthFailedf(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrAuthFailed, format, args...)
}

func InvalidStatef(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrInvalidState, format, args...)
}

func InvalidOrderf(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrInvalidOrder, format, args...)
}

func Busyf(format string, args ...interface{}) *EngineError {
	return NewEngineError(ErrBusy, format, args...)
}

// IsKind reports whether err is an EngineError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind == kind
	}
	return false
}

// httpStatus maps error kinds to HTTP statuses for the REST surface.
var httpStatus = map[ErrorKind]int{
	ErrNotFound:     fiber.StatusNotFound,
	ErrConflict:     fiber.StatusConflict,
	ErrCapacity:     fiber.StatusForbidden,
	ErrIneligible:   fiber.StatusForbidden,
	ErrAuthFailed:   fiber.StatusUnauthorized,
	ErrInvalidState: fiber.StatusConflict,
	ErrInvalidOrder: fiber.StatusConflict,
	ErrBusy:         fiber.StatusServiceUnavailable,
}

// RenderError writes an engine error as a JSON response in the shape the
// frontend expects. Anything that is not an EngineError becomes a 500.
func RenderError(c *fiber.Ctx, err error) error {
	var ee *EngineError
	if errors.As(err, &ee) {
		status, ok := httpStatus[ee.Kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{"error": ee.Message, "kind": string(ee.Kind)})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
