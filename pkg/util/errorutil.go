package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/box-office/internal/domain"
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

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
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

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
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

// sentinelMapping pins each domain sentinel to its wire code and status.
type sentinelMapping struct {
	sentinel error
	code     string
	message  string
	status   int
}

var sentinelMappings = []sentinelMapping{
	{domain.ErrInsufficientInventory, "INSUFFICIENT_INVENTORY", "not enough remaining inventory", http.StatusConflict},
	{domain.ErrInventoryNotFound, "INVENTORY_NOT_FOUND", "no inventory for that event date and ticket type", http.StatusNotFound},
	{domain.ErrInvalidStateTransition, "INVALID_STATE_TRANSITION", "ticket status does not allow this transition", http.StatusConflict},
	{domain.ErrTicketNotFound, "TICKET_NOT_FOUND", "no ticket matches that code", http.StatusNotFound},
	{domain.ErrTicketDisabled, "TICKET_DISABLED", "ticket is administratively disabled", http.StatusConflict},
	{domain.ErrTicketAlreadyValidated, "TICKET_ALREADY_VALIDATED", "ticket was already validated", http.StatusConflict},
	{domain.ErrTicketCancelled, "TICKET_CANCELLED", "ticket was cancelled", http.StatusConflict},
	{domain.ErrOrgCycle, "ORG_CYCLE", "org parent chain contains a cycle", http.StatusUnprocessableEntity},
	{domain.ErrDanglingReference, "ORG_DANGLING_REFERENCE", "org parent reference points at a missing user", http.StatusUnprocessableEntity},
	{domain.ErrCollisionRetryExhausted, "CODE_COLLISION_RETRY_EXHAUSTED", "could not issue a unique ticket code; retry the sale", http.StatusServiceUnavailable},
	{domain.ErrDuplicateTicketCode, "DUPLICATE_TICKET_CODE", "ticket code already exists", http.StatusConflict},
	{domain.ErrSellerInactive, "SELLER_INACTIVE", "seller is suspended or cannot sell", http.StatusConflict},
	{domain.ErrOrgUserNotFound, "ORG_USER_NOT_FOUND", "org user not found", http.StatusNotFound},
	{domain.ErrEventNotFound, "EVENT_NOT_FOUND", "event not found", http.StatusNotFound},
	{domain.ErrOfferNotFound, "OFFER_NOT_FOUND", "ticket type offer not found", http.StatusNotFound},
}

// ToDomainError converts generic errors to DomainError, preserving details
// attached by services via WithDetails.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, m := range sentinelMappings {
		if errors.Is(err, m.sentinel) {
			return &DomainError{
				Code:       m.code,
				Message:    m.message,
				HTTPStatus: m.status,
				Err:        err,
			}
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			de.Err = err
			return de
		}
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

// WithDetails wraps err with operator-facing context (prior status, validated
// timestamp, validator) while keeping errors.Is behavior intact.
func WithDetails(err error, details map[string]any) error {
	de := ToDomainError(err)
	if de == nil {
		return nil
	}
	if de.Details == nil {
		de.Details = map[string]any{}
	}
	for k, v := range details {
		de.Details[k] = v
	}
	if de.Err == nil {
		de.Err = err
	}
	return de
}
