// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInput            = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoApplicableRule = errors.New("no applicable pricing rule")
	ErrDependency       = errors.New("dependency failure")
	ErrAuth             = errors.New("unauthorized")
	// ErrDuplicate marks a replayed webhook event. Callers treat it as success.
	ErrDuplicate = errors.New("duplicate")
)

// Input wraps a request validation message with ErrInput.
func Input(msg string) error {
	return fmt.Errorf("%w: %s", ErrInput, msg)
}

// NotFound wraps an entity name with ErrNotFound.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Dependency wraps a store or payment API error with ErrDependency while
// keeping the cause reachable through errors.Is/As.
func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrDependency, err))
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrDuplicate):
		return http.StatusOK
	case errors.Is(err, ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoApplicableRule):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
