package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/api/dto"
	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/service"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// ValidationHandler serves the gate-side scan endpoint.
type ValidationHandler struct {
	validation *service.ValidationService
}

// NewValidationHandler constructs handler.
func NewValidationHandler(validation *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{validation: validation}
}

// Validate POST /validate. Accepts either a JSON body with a code field or
// a raw scan payload embedding one.
func (h *ValidationHandler) Validate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("validator required")
	}

	raw := string(c.Body())
	var req dto.ValidateRequest
	if err := c.BodyParser(&req); err == nil && req.Code != "" {
		raw = req.Code
	}

	ticket, err := h.validation.Validate(c.UserContext(), raw, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ValidationResponse{
		Accepted: true,
		Ticket:   ticketResponse(ticket),
	}})
}
