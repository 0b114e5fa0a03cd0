package dto

import (
	"time"

	"github.com/spec-kit/box-office/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      OrgUserResponse `json:"user"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateOrgUserRequest payload.
type CreateOrgUserRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     domain.OrgRole `json:"role"`
	ParentID *string        `json:"parent_id"`
}

// SetOrgStatusRequest payload.
type SetOrgStatusRequest struct {
	Status domain.OrgStatus `json:"status"`
}

// OrgUserResponse representation.
type OrgUserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.OrgRole   `json:"role"`
	ParentID  *string          `json:"parent_id,omitempty"`
	Status    domain.OrgStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
