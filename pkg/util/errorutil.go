package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewDataError flags missing or malformed roster/config/request input.
func NewDataError(message string, details map[string]any) error {
	return NewDomainError("DATA_ERROR", message, http.StatusBadRequest, details)
}

// NewModelInfeasible marks a solve that ended without an optimal assignment.
// An expected outcome, not a fault: the caller adjusts inputs and re-triggers.
// The message follows the solver status: only a proven Infeasible may claim
// that no schedule exists.
func NewModelInfeasible(solverStatus string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["solver_status"] = solverStatus

	var message string
	switch solverStatus {
	case "Infeasible":
		message = "no feasible schedule exists for the given roster, configuration and requests"
	case "NotSolved":
		message = "solver hit its node budget before proving the schedule optimal or infeasible"
	case "Unbounded":
		message = "schedule model is unbounded; objective weights are inconsistent"
	default:
		message = "solver ended without an optimal schedule"
	}
	return NewDomainError("MODEL_INFEASIBLE", message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsInfeasible reports whether err carries the MODEL_INFEASIBLE code.
func IsInfeasible(err error) bool {
	de := ToDomainError(err)
	return de != nil && de.Code == "MODEL_INFEASIBLE"
}
