package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/events"
	"github.com/spec-kit/box-office/internal/repository"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// TicketService covers the administrative ticket transitions: disable,
// re-enable, cancel. Cancellation is the only transition that hands units
// back to the inventory ledger.
type TicketService struct {
	tickets     repository.TicketRepository
	inventory   repository.InventoryRepository
	commissions repository.CommissionRepository
	dispatcher  events.Dispatcher
	clock       Clock
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	InventoryRepo  repository.InventoryRepository
	CommissionRepo repository.CommissionRepository
	Dispatcher     events.Dispatcher
	Clock          Clock
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Clock == nil {
		deps.Clock = UTCNow
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		inventory:   deps.InventoryRepo,
		commissions: deps.CommissionRepo,
		dispatcher:  deps.Dispatcher,
		clock:       deps.Clock,
		logger:      deps.Logger,
	}
}

// GetByID fetches a ticket.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.TicketRecord, error) {
	return s.tickets.GetByID(ctx, id)
}

// GetByCode fetches a ticket by its normalized code.
func (s *TicketService) GetByCode(ctx context.Context, rawCode string) (*domain.TicketRecord, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	return s.tickets.GetByCode(ctx, code)
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketRecord, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// Disable suspends an active ticket. Reversible via Enable; the ticket's
// units stay committed against inventory.
func (s *TicketService) Disable(ctx context.Context, ticketID, actorID string) (*domain.TicketRecord, error) {
	return s.transition(ctx, ticketID, actorID, domain.TicketStatusActive, domain.TicketStatusDisabled, events.EventTicketDisabled)
}

// Enable reverses a Disable, returning the ticket to ACTIVE, never to
// VALIDATED.
func (s *TicketService) Enable(ctx context.Context, ticketID, actorID string) (*domain.TicketRecord, error) {
	return s.transition(ctx, ticketID, actorID, domain.TicketStatusDisabled, domain.TicketStatusActive, events.EventTicketEnabled)
}

func (s *TicketService) transition(ctx context.Context, ticketID, actorID string, from, to domain.TicketStatus, eventType events.EventType) (*domain.TicketRecord, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != from {
		return nil, invalidTransition(ticket, to)
	}
	applied, err := s.tickets.TransitionStatus(ctx, ticketID, from, to, s.clock())
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		return nil, invalidTransition(current, to)
	}
	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     eventType,
		TicketID: updated.ID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			Code:      updated.Code,
			OldStatus: from,
			NewStatus: to,
			SellerID:  updated.SellerID,
		},
	})
	return updated, nil
}

// Cancel terminates a ticket from ACTIVE or DISABLED, releases its units
// back to inventory and cancels the pending commission rows. Validated
// tickets cannot be cancelled.
func (s *TicketService) Cancel(ctx context.Context, ticketID, actorID string) (*domain.TicketRecord, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusCancelled) {
		return nil, invalidTransition(ticket, domain.TicketStatusCancelled)
	}

	applied, err := s.tickets.TransitionStatus(ctx, ticketID, ticket.Status, domain.TicketStatusCancelled, s.clock())
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		return nil, invalidTransition(current, domain.TicketStatusCancelled)
	}

	if err := s.inventory.Release(ctx, ticket.EventDateID, ticket.TicketType.Key(), ticket.Quantity); err != nil {
		s.logger.Error("inventory release after cancel failed",
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
	if s.commissions != nil {
		if err := s.commissions.UpdateStatusByTicket(ctx, ticket.ID, domain.CommissionStatusCancelled); err != nil {
			s.logger.Error("commission cancel failed",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}

	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCancelled,
		TicketID: updated.ID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			Code:      updated.Code,
			OldStatus: ticket.Status,
			NewStatus: domain.TicketStatusCancelled,
			SellerID:  updated.SellerID,
		},
	})
	return updated, nil
}

func invalidTransition(ticket *domain.TicketRecord, to domain.TicketStatus) error {
	return apperrors.WithDetails(domain.ErrInvalidStateTransition, map[string]any{
		"ticket_id": ticket.ID,
		"status":    ticket.Status,
		"requested": to,
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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
