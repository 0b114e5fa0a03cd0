package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/box-office/internal/domain"
)

// MemoryStore backs the in-memory repository implementations. It serves
// tests and DSN-less development runs; all repositories created from one
// store share state under a single mutex, which gives the same
// serialization guarantees the Postgres implementations get from
// conditional writes.
type MemoryStore struct {
	mu          sync.Mutex
	tickets     map[string]*domain.TicketRecord
	byCode      map[string]string
	inventory   map[string]*inventoryRow
	orgUsers    map[string]*domain.OrgUser
	events      map[string]*domain.Event
	commissions map[string]*domain.CommissionRecord
}

type inventoryRow struct {
	total     int
	remaining int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:     make(map[string]*domain.TicketRecord),
		byCode:      make(map[string]string),
		inventory:   make(map[string]*inventoryRow),
		orgUsers:    make(map[string]*domain.OrgUser),
		events:      make(map[string]*domain.Event),
		commissions: make(map[string]*domain.CommissionRecord),
	}
}

func inventoryKey(eventDateID, ticketTypeID string) string {
	return eventDateID + "|" + ticketTypeID
}

// --- tickets ---

type memoryTicketRepository struct {
	store *MemoryStore
}

// NewMemoryTicketRepository returns an in-memory TicketRepository.
func NewMemoryTicketRepository(store *MemoryStore) TicketRepository {
	return &memoryTicketRepository{store: store}
}

func (r *memoryTicketRepository) CreateWithCommissions(ctx context.Context, ticket *domain.TicketRecord, commissions []domain.CommissionRecord) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirror the UNIQUE constraint on the code column: a code that already
	// maps to a ticket must never be silently remapped.
	if _, exists := s.byCode[strings.ToUpper(ticket.Code)]; exists {
		return domain.ErrDuplicateTicketCode
	}

	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := ticket.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now

	clone := *ticket
	s.tickets[ticket.ID] = &clone
	s.byCode[strings.ToUpper(ticket.Code)] = ticket.ID

	for i := range commissions {
		if commissions[i].ID == "" {
			commissions[i].ID = uuid.NewString()
		}
		commissions[i].TicketID = ticket.ID
		commissions[i].CreatedAt = now
		commissions[i].UpdatedAt = now
		c := commissions[i]
		s.commissions[c.ID] = &c
	}
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.TicketRecord, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	clone := *ticket
	return &clone, nil
}

func (r *memoryTicketRepository) GetByCode(ctx context.Context, code string) (*domain.TicketRecord, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	clone := *s.tickets[id]
	return &clone, nil
}

func (r *memoryTicketRepository) MarkValidated(ctx context.Context, id, validatorID string, at time.Time) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return false, domain.ErrTicketNotFound
	}
	if ticket.Status != domain.TicketStatusActive {
		return false, nil
	}
	ticket.Status = domain.TicketStatusValidated
	ticket.ValidatorID = &validatorID
	validatedAt := at
	ticket.ValidatedAt = &validatedAt
	ticket.UpdatedAt = at
	return true, nil
}

func (r *memoryTicketRepository) TransitionStatus(ctx context.Context, id string, from, to domain.TicketStatus, at time.Time) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return false, domain.ErrTicketNotFound
	}
	if ticket.Status != from {
		return false, nil
	}
	ticket.Status = to
	if to == domain.TicketStatusCancelled {
		cancelledAt := at
		ticket.CancelledAt = &cancelledAt
	}
	ticket.UpdatedAt = at
	return true, nil
}

func (r *memoryTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.TicketRecord, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sellerSet := map[string]struct{}{}
	for _, id := range filter.SellerIDs {
		sellerSet[id] = struct{}{}
	}
	statusSet := map[domain.TicketStatus]struct{}{}
	for _, status := range filter.Statuses {
		statusSet[status] = struct{}{}
	}

	var result []domain.TicketRecord
	for _, ticket := range s.tickets {
		if len(sellerSet) > 0 {
			if _, ok := sellerSet[ticket.SellerID]; !ok {
				continue
			}
		}
		if filter.EventID != nil && ticket.EventID != *filter.EventID {
			continue
		}
		if filter.EventDateID != nil && ticket.EventDateID != *filter.EventDateID {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[ticket.Status]; !ok {
				continue
			}
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// --- inventory ---

type memoryInventoryRepository struct {
	store *MemoryStore
}

// NewMemoryInventoryRepository returns an in-memory InventoryRepository.
func NewMemoryInventoryRepository(store *MemoryStore) InventoryRepository {
	return &memoryInventoryRepository{store: store}
}

func (r *memoryInventoryRepository) Init(ctx context.Context, eventDateID, ticketTypeID string, totalQuantity int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	key := inventoryKey(eventDateID, ticketTypeID)
	if _, ok := s.inventory[key]; ok {
		return nil
	}
	s.inventory[key] = &inventoryRow{total: totalQuantity, remaining: totalQuantity}
	return nil
}

func (r *memoryInventoryRepository) ReserveAndCommit(ctx context.Context, eventDateID, ticketTypeID string, quantity int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.inventory[inventoryKey(eventDateID, ticketTypeID)]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	if row.remaining < quantity {
		return domain.ErrInsufficientInventory
	}
	row.remaining -= quantity
	return nil
}

func (r *memoryInventoryRepository) Release(ctx context.Context, eventDateID, ticketTypeID string, quantity int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.inventory[inventoryKey(eventDateID, ticketTypeID)]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	row.remaining += quantity
	if row.remaining > row.total {
		row.remaining = row.total
	}
	return nil
}

func (r *memoryInventoryRepository) Remaining(ctx context.Context, eventDateID, ticketTypeID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.inventory[inventoryKey(eventDateID, ticketTypeID)]
	if !ok {
		return 0, domain.ErrInventoryNotFound
	}
	return row.remaining, nil
}

// --- org users ---

type memoryOrgRepository struct {
	store *MemoryStore
}

// NewMemoryOrgRepository returns an in-memory OrgRepository.
func NewMemoryOrgRepository(store *MemoryStore) OrgRepository {
	return &memoryOrgRepository{store: store}
}

func (r *memoryOrgRepository) Create(ctx context.Context, user *domain.OrgUser) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	s.orgUsers[user.ID] = &clone
	return nil
}

func (r *memoryOrgRepository) Update(ctx context.Context, user *domain.OrgUser) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgUsers[user.ID]; !ok {
		return domain.ErrOrgUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	s.orgUsers[user.ID] = &clone
	return nil
}

func (r *memoryOrgRepository) GetByID(ctx context.Context, id string) (*domain.OrgUser, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.orgUsers[id]
	if !ok {
		return nil, domain.ErrOrgUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memoryOrgRepository) GetByEmail(ctx context.Context, email string) (*domain.OrgUser, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.orgUsers {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrOrgUserNotFound
}

func (r *memoryOrgRepository) ListAll(ctx context.Context) ([]domain.OrgUser, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.OrgUser, 0, len(s.orgUsers))
	for _, user := range s.orgUsers {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- events ---

type memoryEventRepository struct {
	store *MemoryStore
}

// NewMemoryEventRepository returns an in-memory EventRepository.
func NewMemoryEventRepository(store *MemoryStore) EventRepository {
	return &memoryEventRepository{store: store}
}

func (r *memoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	for di := range event.Dates {
		date := &event.Dates[di]
		if date.ID == "" {
			date.ID = uuid.NewString()
		}
		date.EventID = event.ID
		for ti := range date.TicketTypes {
			if date.TicketTypes[ti].ID == "" {
				date.TicketTypes[ti].ID = uuid.NewString()
			}
			date.TicketTypes[ti].EventDateID = date.ID
		}
		for ti := range date.TableTypes {
			if date.TableTypes[ti].ID == "" {
				date.TableTypes[ti].ID = uuid.NewString()
			}
			date.TableTypes[ti].EventDateID = date.ID
		}
	}
	clone := *event
	clone.Dates = append([]domain.EventDate(nil), event.Dates...)
	s.events[event.ID] = &clone
	return nil
}

func (r *memoryEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	clone := *event
	clone.Dates = append([]domain.EventDate(nil), event.Dates...)
	return &clone, nil
}

func (r *memoryEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.Event, 0, len(s.events))
	for _, event := range s.events {
		clone := *event
		clone.Dates = append([]domain.EventDate(nil), event.Dates...)
		result = append(result, clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memoryEventRepository) GetOffer(ctx context.Context, eventDateID, ticketTypeID string) (*domain.TicketTypeOffer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		for _, date := range event.Dates {
			if date.ID != eventDateID {
				continue
			}
			for _, offer := range date.TicketTypes {
				if offer.ID == ticketTypeID {
					clone := offer
					return &clone, nil
				}
			}
			for _, table := range date.TableTypes {
				if table.ID == ticketTypeID {
					return &domain.TicketTypeOffer{
						ID:            table.ID,
						EventDateID:   table.EventDateID,
						Name:          table.Name,
						Price:         table.Price,
						TotalQuantity: table.TotalQuantity,
					}, nil
				}
			}
		}
	}
	return nil, domain.ErrOfferNotFound
}

// --- commissions ---

type memoryCommissionRepository struct {
	store *MemoryStore
}

// NewMemoryCommissionRepository returns an in-memory CommissionRepository.
func NewMemoryCommissionRepository(store *MemoryStore) CommissionRepository {
	return &memoryCommissionRepository{store: store}
}

func (r *memoryCommissionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.CommissionRecord, error) {
	return r.list(func(c *domain.CommissionRecord) bool { return c.TicketID == ticketID })
}

func (r *memoryCommissionRepository) ListByBeneficiary(ctx context.Context, beneficiaryID string) ([]domain.CommissionRecord, error) {
	return r.list(func(c *domain.CommissionRecord) bool { return c.BeneficiaryID == beneficiaryID })
}

func (r *memoryCommissionRepository) list(keep func(*domain.CommissionRecord) bool) ([]domain.CommissionRecord, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.CommissionRecord
	for _, record := range s.commissions {
		if keep(record) {
			result = append(result, *record)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *memoryCommissionRepository) UpdateStatusByTicket(ctx context.Context, ticketID string, status domain.CommissionStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, record := range s.commissions {
		if record.TicketID == ticketID {
			record.Status = status
			record.UpdatedAt = now
		}
	}
	return nil
}
