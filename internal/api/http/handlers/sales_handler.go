package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/api/dto"
	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/service"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// SalesHandler manages sale endpoints for sellers.
type SalesHandler struct {
	sales *service.SaleService
}

// NewSalesHandler constructs handler.
func NewSalesHandler(sales *service.SaleService) *SalesHandler {
	return &SalesHandler{sales: sales}
}

// CreateSale POST /sales. The authenticated seller is the ticket's seller.
func (h *SalesHandler) CreateSale(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("seller required")
	}
	var req dto.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.EventID == "" || req.EventDateID == "" || len(req.TicketType) == 0 {
		return apperrors.NewValidationError("event_id, event_date_id, ticket_type required", nil)
	}

	var typeRef domain.TicketTypeRef
	if err := json.Unmarshal(req.TicketType, &typeRef); err != nil {
		return apperrors.NewValidationError("ticket_type must be a string or an {id,name} object", nil)
	}

	ticket, err := h.sales.SellTicket(c.UserContext(), service.SaleInput{
		EventID:     req.EventID,
		EventDateID: req.EventDateID,
		TicketType:  typeRef,
		Quantity:    req.Quantity,
		Customer: domain.Customer{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		SellerID: principal.User.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func ticketResponse(ticket *domain.TicketRecord) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		EventID:     ticket.EventID,
		EventDateID: ticket.EventDateID,
		TicketType:  ticket.TicketType.Canonical(),
		Quantity:    ticket.Quantity,
		UnitPrice:   ticket.UnitPrice,
		TotalPrice:  ticket.TotalPrice,
		Customer: dto.CustomerPayload{
			Name:  ticket.Customer.Name,
			Email: ticket.Customer.Email,
			Phone: ticket.Customer.Phone,
		},
		SellerID: ticket.SellerID,
		Code:     ticket.Code,
		Status:   ticket.Status,
		Commission: dto.CommissionPayload{
			PromoterCut:   ticket.Commission.PromoterCut,
			TeamLeaderCut: ticket.Commission.TeamLeaderCut,
			ManagerCut:    ticket.Commission.ManagerCut,
		},
		ValidatorID: ticket.ValidatorID,
		CreatedAt:   ticket.CreatedAt,
		ValidatedAt: ticket.ValidatedAt,
		CancelledAt: ticket.CancelledAt,
	}
}
