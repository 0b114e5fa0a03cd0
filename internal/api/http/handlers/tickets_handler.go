package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/api/dto"
	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/repository"
	"github.com/spec-kit/box-office/internal/service"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// TicketsHandler manages administrative ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := repository.TicketFilter{}
	if eventID := c.Query("event_id"); eventID != "" {
		filter.EventID = &eventID
	}
	if dateID := c.Query("event_date_id"); dateID != "" {
		filter.EventDateID = &dateID
	}
	if sellerID := c.Query("seller_id"); sellerID != "" {
		filter.SellerIDs = []string{sellerID}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}

	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DisableTicket POST /tickets/:id/disable.
func (h *TicketsHandler) DisableTicket(c *fiber.Ctx) error {
	return h.mutate(c, h.tickets.Disable)
}

// EnableTicket POST /tickets/:id/enable.
func (h *TicketsHandler) EnableTicket(c *fiber.Ctx) error {
	return h.mutate(c, h.tickets.Enable)
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	return h.mutate(c, h.tickets.Cancel)
}

type ticketMutation func(ctx context.Context, ticketID, actorID string) (*domain.TicketRecord, error)

func (h *TicketsHandler) mutate(c *fiber.Ctx, op ticketMutation) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	ticket, err := op(c.UserContext(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
