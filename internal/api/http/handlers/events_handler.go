package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/api/dto"
	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/repository"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// EventsHandler manages event and offer endpoints.
type EventsHandler struct {
	events    repository.EventRepository
	inventory repository.InventoryRepository
}

// NewEventsHandler constructs handler.
func NewEventsHandler(events repository.EventRepository, inventory repository.InventoryRepository) *EventsHandler {
	return &EventsHandler{events: events, inventory: inventory}
}

// CreateEvent POST /events. Creating an event seeds the inventory ledger
// for every offer; total quantities are fixed from then on.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || len(req.Dates) == 0 {
		return apperrors.NewValidationError("name and at least one date required", nil)
	}

	event := &domain.Event{
		Name:        req.Name,
		Description: req.Description,
	}
	for _, date := range req.Dates {
		eventDate := domain.EventDate{StartsAt: date.StartsAt}
		for _, offer := range date.TicketTypes {
			if offer.TotalQuantity < 1 || offer.Price.IsNegative() {
				return apperrors.NewValidationError("offers need positive quantity and non-negative price", nil)
			}
			eventDate.TicketTypes = append(eventDate.TicketTypes, domain.TicketTypeOffer{
				Name:          offer.Name,
				Price:         offer.Price,
				TotalQuantity: offer.TotalQuantity,
			})
		}
		for _, table := range date.TableTypes {
			if table.TotalQuantity < 1 || table.Price.IsNegative() {
				return apperrors.NewValidationError("offers need positive quantity and non-negative price", nil)
			}
			eventDate.TableTypes = append(eventDate.TableTypes, domain.TableTypeOffer{
				Name:          table.Name,
				Price:         table.Price,
				Seats:         table.Seats,
				TotalQuantity: table.TotalQuantity,
			})
		}
		event.Dates = append(event.Dates, eventDate)
	}

	if err := h.events.Create(c.UserContext(), event); err != nil {
		return err
	}
	for _, date := range event.Dates {
		for _, offer := range date.TicketTypes {
			if err := h.inventory.Init(c.UserContext(), date.ID, offer.ID, offer.TotalQuantity); err != nil {
				return err
			}
		}
		for _, table := range date.TableTypes {
			if err := h.inventory.Init(c.UserContext(), date.ID, table.ID, table.TotalQuantity); err != nil {
				return err
			}
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.eventResponse(c.UserContext(), event)})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.events.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.eventResponse(c.UserContext(), event)})
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.events.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, h.eventResponse(c.UserContext(), &events[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *EventsHandler) eventResponse(ctx context.Context, event *domain.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		CreatedAt:   event.CreatedAt,
	}
	for _, date := range event.Dates {
		dateResp := dto.EventDateResponse{ID: date.ID, StartsAt: date.StartsAt}
		for _, offer := range date.TicketTypes {
			offerResp := dto.OfferResponse{
				ID:            offer.ID,
				Name:          offer.Name,
				Price:         offer.Price,
				TotalQuantity: offer.TotalQuantity,
			}
			if remaining, err := h.inventory.Remaining(ctx, date.ID, offer.ID); err == nil {
				offerResp.Remaining = &remaining
			}
			dateResp.TicketTypes = append(dateResp.TicketTypes, offerResp)
		}
		for _, table := range date.TableTypes {
			tableResp := dto.TableOfferResponse{
				ID:            table.ID,
				Name:          table.Name,
				Price:         table.Price,
				Seats:         table.Seats,
				TotalQuantity: table.TotalQuantity,
			}
			if remaining, err := h.inventory.Remaining(ctx, date.ID, table.ID); err == nil {
				tableResp.Remaining = &remaining
			}
			dateResp.TableTypes = append(dateResp.TableTypes, tableResp)
		}
		resp.Dates = append(resp.Dates, dateResp)
	}
	return resp
}
