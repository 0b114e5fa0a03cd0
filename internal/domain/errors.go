package domain

import "errors"

// Sentinel errors for the sale, validation and org-resolution taxonomy.
// Services return these (possibly wrapped) so callers can branch with
// errors.Is; the HTTP layer maps them to response codes.
var (
	ErrInsufficientInventory   = errors.New("insufficient inventory")
	ErrInventoryNotFound       = errors.New("inventory key not found")
	ErrInvalidStateTransition  = errors.New("invalid ticket state transition")
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrTicketDisabled          = errors.New("ticket disabled")
	ErrTicketAlreadyValidated  = errors.New("ticket already validated")
	ErrTicketCancelled         = errors.New("ticket cancelled")
	ErrOrgCycle                = errors.New("cycle in org parent chain")
	ErrDanglingReference       = errors.New("dangling org parent reference")
	ErrCollisionRetryExhausted = errors.New("ticket code collision retries exhausted")
	ErrDuplicateTicketCode     = errors.New("ticket code already exists")
	ErrSellerInactive          = errors.New("seller is not an active sales role")
	ErrOrgUserNotFound         = errors.New("org user not found")
	ErrEventNotFound           = errors.New("event not found")
	ErrOfferNotFound           = errors.New("ticket type offer not found")
)
