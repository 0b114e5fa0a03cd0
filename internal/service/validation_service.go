package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/events"
	"github.com/spec-kit/box-office/internal/repository"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// ValidationService performs the exactly-once gate-side transition. Two
// simultaneous scans of one code can both read ACTIVE, but only one
// conditional write lands; the loser reports AlreadyValidated.
type ValidationService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// NewValidationService constructs the service.
func NewValidationService(tickets repository.TicketRepository, dispatcher events.Dispatcher, clock Clock, logger *zap.Logger) *ValidationService {
	if clock == nil {
		clock = UTCNow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationService{tickets: tickets, dispatcher: dispatcher, clock: clock, logger: logger}
}

type codePayload struct {
	Code       string `json:"code"`
	TicketCode string `json:"ticket_code"`
}

// NormalizeCode accepts a bare code or a JSON payload embedding a code
// field; the result is trimmed and upper-cased. Codes match
// case-insensitively at the gate.
func NormalizeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var payload codePayload
		if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
			return "", apperrors.NewValidationError("unreadable scan payload", nil)
		}
		trimmed = payload.Code
		if trimmed == "" {
			trimmed = payload.TicketCode
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	if trimmed == "" {
		return "", apperrors.NewValidationError("code required", nil)
	}
	return strings.ToUpper(trimmed), nil
}

// Validate resolves rawCode and attempts the active-to-validated
// transition. Failure precedence: NotFound > Disabled > AlreadyValidated >
// Cancelled. Repeated calls with one code yield exactly one success ever.
func (s *ValidationService) Validate(ctx context.Context, rawCode, validatorID string) (*domain.TicketRecord, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := rejectByStatus(ticket); err != nil {
		return nil, err
	}

	now := s.clock()
	applied, err := s.tickets.MarkValidated(ctx, ticket.ID, validatorID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race: re-read and report the state that beat us.
		current, err := s.tickets.GetByID(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		if rejectErr := rejectByStatus(current); rejectErr != nil {
			return nil, rejectErr
		}
		return nil, domain.ErrInvalidStateTransition
	}

	validated, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketValidated,
		TicketID: validated.ID,
		ActorID:  validatorID,
		Payload: events.TicketValidatedPayload{
			Code:        validated.Code,
			ValidatorID: validatorID,
			ValidatedAt: now,
			SellerID:    validated.SellerID,
		},
	})
	return validated, nil
}

// rejectByStatus maps a non-active ticket to its validation failure,
// attaching the prior state's timestamps for operator audit.
func rejectByStatus(ticket *domain.TicketRecord) error {
	switch ticket.Status {
	case domain.TicketStatusActive:
		return nil
	case domain.TicketStatusDisabled:
		return apperrors.WithDetails(domain.ErrTicketDisabled, map[string]any{
			"code": ticket.Code,
		})
	case domain.TicketStatusValidated:
		details := map[string]any{"code": ticket.Code}
		if ticket.ValidatedAt != nil {
			details["validated_at"] = *ticket.ValidatedAt
		}
		if ticket.ValidatorID != nil {
			details["validator_id"] = *ticket.ValidatorID
		}
		return apperrors.WithDetails(domain.ErrTicketAlreadyValidated, details)
	case domain.TicketStatusCancelled:
		details := map[string]any{"code": ticket.Code}
		if ticket.CancelledAt != nil {
			details["cancelled_at"] = *ticket.CancelledAt
		}
		return apperrors.WithDetails(domain.ErrTicketCancelled, details)
	}
	return domain.ErrInvalidStateTransition
}

func (s *ValidationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
