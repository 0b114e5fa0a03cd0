package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/box-office/internal/api/dto"
	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/service"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// OrgHandler manages sales-organization members and auth.
type OrgHandler struct {
	org  *service.OrgService
	auth *service.AuthService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(org *service.OrgService, authService *service.AuthService) *OrgHandler {
	return &OrgHandler{org: org, auth: authService}
}

// Login POST /auth/login.
func (h *OrgHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      orgUserResponse(user),
	}})
}

// ChangePassword POST /auth/password/change.
func (h *OrgHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ChangePassword(c.UserContext(), principal.User.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// CreateMember POST /org/users.
func (h *OrgHandler) CreateMember(c *fiber.Ctx) error {
	var req dto.CreateOrgUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.org.CreateMember(c.UserContext(), service.CreateMemberInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ParentID: req.ParentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": orgUserResponse(user)})
}

// ListMembers GET /org/users.
func (h *OrgHandler) ListMembers(c *fiber.Ctx) error {
	users, err := h.org.ListMembers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.OrgUserResponse, 0, len(users))
	for i := range users {
		items = append(items, orgUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetStatus POST /org/users/:id/status.
func (h *OrgHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.SetOrgStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status != domain.OrgStatusActive && req.Status != domain.OrgStatusSuspended {
		return apperrors.NewValidationError("status must be ACTIVE or SUSPENDED", nil)
	}
	user, err := h.org.SetStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orgUserResponse(user)})
}

func orgUserResponse(user *domain.OrgUser) dto.OrgUserResponse {
	return dto.OrgUserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		ParentID:  user.ParentID,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}
