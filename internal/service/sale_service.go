package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/events"
	"github.com/spec-kit/box-office/internal/repository"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// SaleService orchestrates a ticket sale: seller check, inventory
// reservation, code issuance, commission split, persistence, notification.
// Inventory is never left consumed without a persisted ticket: every failure
// after the reservation commits triggers a compensating release.
type SaleService struct {
	tickets         repository.TicketRepository
	inventory       repository.InventoryRepository
	offers          repository.EventRepository
	org             *OrgService
	dispatcher      events.Dispatcher
	codes           CodeGenerator
	clock           Clock
	rates           CommissionRates
	maxCodeAttempts int
	logger          *zap.Logger
}

// SaleDependencies bundles collaborators for the sale service.
type SaleDependencies struct {
	TicketRepo      repository.TicketRepository
	InventoryRepo   repository.InventoryRepository
	EventRepo       repository.EventRepository
	Org             *OrgService
	Dispatcher      events.Dispatcher
	Codes           CodeGenerator
	Clock           Clock
	Rates           CommissionRates
	MaxCodeAttempts int
	Logger          *zap.Logger
}

// NewSaleService constructs the service.
func NewSaleService(deps SaleDependencies) *SaleService {
	if deps.Clock == nil {
		deps.Clock = UTCNow
	}
	if deps.Codes == nil {
		deps.Codes = RandomCodeGenerator{Length: 8}
	}
	if deps.MaxCodeAttempts <= 0 {
		deps.MaxCodeAttempts = 5
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SaleService{
		tickets:         deps.TicketRepo,
		inventory:       deps.InventoryRepo,
		offers:          deps.EventRepo,
		org:             deps.Org,
		dispatcher:      deps.Dispatcher,
		codes:           deps.Codes,
		clock:           deps.Clock,
		rates:           deps.Rates,
		maxCodeAttempts: deps.MaxCodeAttempts,
		logger:          deps.Logger,
	}
}

// SaleInput describes a sale request. TicketType arrives in whatever form
// the upstream sent it; it is canonicalized before any lookups.
type SaleInput struct {
	EventID     string
	EventDateID string
	TicketType  domain.TicketTypeRef
	Quantity    int
	Customer    domain.Customer
	SellerID    string
}

// SellTicket runs the sale. On success the returned ticket is ACTIVE with
// its commission rows persisted as one unit.
func (s *SaleService) SellTicket(ctx context.Context, input SaleInput) (*domain.TicketRecord, error) {
	if input.Quantity < 1 {
		return nil, apperrors.NewValidationError("quantity must be at least 1", nil)
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return nil, apperrors.NewValidationError("customer name required", nil)
	}

	snapshot, err := s.org.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	seller, err := snapshot.User(input.SellerID)
	if err != nil {
		return nil, err
	}
	if seller.Status != domain.OrgStatusActive || !seller.CanSell() {
		return nil, domain.ErrSellerInactive
	}

	typeRef := input.TicketType.Canonical()
	offer, err := s.offers.GetOffer(ctx, input.EventDateID, typeRef.ID)
	if err != nil {
		return nil, err
	}
	if typeRef.Name == "" {
		typeRef.Name = offer.Name
	}

	if err := s.inventory.ReserveAndCommit(ctx, input.EventDateID, offer.ID, input.Quantity); err != nil {
		return nil, err
	}

	ticket, chain, err := s.buildAndPersist(ctx, snapshot, seller, offer, typeRef, input)
	if err != nil {
		// Compensating action: the reservation committed but no ticket
		// exists, so the units go back to the pool.
		if releaseErr := s.inventory.Release(ctx, input.EventDateID, offer.ID, input.Quantity); releaseErr != nil {
			s.logger.Error("compensating inventory release failed",
				zap.String("event_date_id", input.EventDateID),
				zap.String("ticket_type_id", offer.ID),
				zap.Int("quantity", input.Quantity),
				zap.Error(releaseErr))
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketSold,
		TicketID: ticket.ID,
		ActorID:  seller.ID,
		Payload: events.TicketSoldPayload{
			Code:        ticket.Code,
			EventID:     ticket.EventID,
			EventDateID: ticket.EventDateID,
			TicketType:  ticket.TicketType,
			Quantity:    ticket.Quantity,
			TotalPrice:  ticket.TotalPrice,
			SellerID:    ticket.SellerID,
			OrgChainIDs: chain.IDs(),
		},
	})
	return ticket, nil
}

func (s *SaleService) buildAndPersist(ctx context.Context, snapshot *OrgSnapshot, seller *domain.OrgUser, offer *domain.TicketTypeOffer, typeRef domain.TicketTypeRef, input SaleInput) (*domain.TicketRecord, domain.OrgChain, error) {
	code, err := s.issueCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	chain, err := snapshot.ChainFor(seller.ID)
	if err != nil {
		// Never silently zero the commission on a broken chain; the sale
		// fails and the reservation is compensated by the caller.
		return nil, nil, err
	}

	totalPrice := offer.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
	breakdown := CalculateCommission(totalPrice, chain, s.rates)

	ticket := &domain.TicketRecord{
		EventID:     input.EventID,
		EventDateID: input.EventDateID,
		TicketType:  typeRef,
		Quantity:    input.Quantity,
		UnitPrice:   offer.Price,
		TotalPrice:  totalPrice,
		Customer:    input.Customer,
		SellerID:    seller.ID,
		Code:        code,
		Status:      domain.TicketStatusActive,
		Commission:  breakdown,
		CreatedAt:   s.clock(),
	}

	if err := s.tickets.CreateWithCommissions(ctx, ticket, commissionRecords(chain, breakdown)); err != nil {
		return nil, nil, err
	}
	return ticket, chain, nil
}

// issueCode generates a code and retries on collision up to the configured
// bound. The code column additionally carries a unique constraint, so a
// lost race between the probe and the insert still cannot produce two
// tickets with one code.
func (s *SaleService) issueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxCodeAttempts; attempt++ {
		code, err := s.codes.NewCode()
		if err != nil {
			return "", err
		}
		_, err = s.tickets.GetByCode(ctx, code)
		if errors.Is(err, domain.ErrTicketNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		s.logger.Warn("ticket code collision", zap.Int("attempt", attempt+1))
	}
	return "", domain.ErrCollisionRetryExhausted
}

func (s *SaleService) publish(ctx context.Context, event events.Event) {
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
