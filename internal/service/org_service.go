package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/box-office/internal/auth"
	"github.com/spec-kit/box-office/internal/domain"
	"github.com/spec-kit/box-office/internal/repository"
	apperrors "github.com/spec-kit/box-office/pkg/util"
)

// chainDepth caps ancestor resolution at promoter -> team leader -> manager.
const chainDepth = 3

// OrgService owns the sales hierarchy: member management plus the single
// chain/descendants resolver every other component goes through. Traversals
// run against a snapshot loaded once per operation, so one request never
// observes two different org shapes.
type OrgService struct {
	org        repository.OrgRepository
	bcryptCost int
}

// NewOrgService constructs the service.
func NewOrgService(org repository.OrgRepository, bcryptCost int) *OrgService {
	return &OrgService{org: org, bcryptCost: bcryptCost}
}

// OrgSnapshot is an immutable in-memory view of the org tree. The parent
// data has no enforced acyclicity, so every walk carries a visited set and
// fails closed instead of looping.
type OrgSnapshot struct {
	users    map[string]*domain.OrgUser
	children map[string][]string
}

// Snapshot loads the full org into a traversal-ready index.
func (s *OrgService) Snapshot(ctx context.Context) (*OrgSnapshot, error) {
	all, err := s.org.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	snap := &OrgSnapshot{
		users:    make(map[string]*domain.OrgUser, len(all)),
		children: make(map[string][]string),
	}
	for i := range all {
		user := all[i]
		snap.users[user.ID] = &user
	}
	for i := range all {
		user := all[i]
		if user.ParentID != nil {
			snap.children[*user.ParentID] = append(snap.children[*user.ParentID], user.ID)
		}
	}
	for parent := range snap.children {
		sort.Strings(snap.children[parent])
	}
	return snap, nil
}

// User returns the snapshot member by ID.
func (snap *OrgSnapshot) User(id string) (*domain.OrgUser, error) {
	user, ok := snap.users[id]
	if !ok {
		return nil, domain.ErrOrgUserNotFound
	}
	return user, nil
}

// ChainFor resolves the ordered ancestor path [self, parent, grandparent].
// A parent pointer at a missing user fails with ErrDanglingReference; a
// pointer looping back onto the walked path fails with ErrOrgCycle.
func (snap *OrgSnapshot) ChainFor(userID string) (domain.OrgChain, error) {
	user, ok := snap.users[userID]
	if !ok {
		return nil, domain.ErrOrgUserNotFound
	}

	chain := domain.OrgChain{user}
	visited := map[string]struct{}{user.ID: {}}
	current := user
	for len(chain) < chainDepth && current.ParentID != nil {
		parent, ok := snap.users[*current.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s names parent %s", domain.ErrDanglingReference, current.ID, *current.ParentID)
		}
		if _, seen := visited[parent.ID]; seen {
			return nil, fmt.Errorf("%w: detected at %s", domain.ErrOrgCycle, parent.ID)
		}
		visited[parent.ID] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}
	// A parent edge beyond the capped depth that loops back is still a
	// defect worth surfacing rather than silently truncating.
	if current.ParentID != nil {
		if _, seen := visited[*current.ParentID]; seen {
			return nil, fmt.Errorf("%w: detected at %s", domain.ErrOrgCycle, *current.ParentID)
		}
	}
	return chain, nil
}

// SubtreeIDs returns the IDs of every node reachable downward from userID,
// the node itself included. Revisiting a node means the parent data forms a
// cycle, which fails closed.
func (snap *OrgSnapshot) SubtreeIDs(userID string) ([]string, error) {
	if _, ok := snap.users[userID]; !ok {
		return nil, domain.ErrOrgUserNotFound
	}
	visited := map[string]struct{}{}
	queue := []string{userID}
	var result []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current]; seen {
			return nil, fmt.Errorf("%w: detected at %s", domain.ErrOrgCycle, current)
		}
		visited[current] = struct{}{}
		result = append(result, current)
		queue = append(queue, snap.children[current]...)
	}
	sort.Strings(result)
	return result, nil
}

// CreateMemberInput describes a new org member.
type CreateMemberInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.OrgRole
	ParentID *string
}

// CreateMember registers a member, enforcing the tier pairing: promoters
// hang off team leaders, team leaders off managers.
func (s *OrgService) CreateMember(ctx context.Context, input CreateMemberInput) (*domain.OrgUser, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if _, err := s.org.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}

	if err := s.validateParent(ctx, input.Role, input.ParentID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.OrgUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		ParentID:     input.ParentID,
		Status:       domain.OrgStatusActive,
	}
	if err := s.org.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *OrgService) validateParent(ctx context.Context, role domain.OrgRole, parentID *string) error {
	var wantParent domain.OrgRole
	switch role {
	case domain.OrgRolePromoter:
		wantParent = domain.OrgRoleTeamLeader
	case domain.OrgRoleTeamLeader:
		wantParent = domain.OrgRoleManager
	case domain.OrgRoleManager, domain.OrgRoleAdmin, domain.OrgRoleValidator:
		if parentID != nil {
			return apperrors.NewValidationError("role does not take a parent", map[string]any{"role": role})
		}
		return nil
	default:
		return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if parentID == nil {
		// Unattached promoters/team leaders are allowed; their upper
		// commission tiers simply stay empty.
		return nil
	}
	parent, err := s.org.GetByID(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent.Role != wantParent {
		return apperrors.NewValidationError("parent has wrong role", map[string]any{
			"parent_role": parent.Role,
			"expected":    wantParent,
		})
	}
	return nil
}

// SetStatus suspends or reactivates a member. Suspension blocks new sales;
// historical tickets keep their seller attribution.
func (s *OrgService) SetStatus(ctx context.Context, userID string, status domain.OrgStatus) (*domain.OrgUser, error) {
	user, err := s.org.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.org.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListMembers returns all org members.
func (s *OrgService) ListMembers(ctx context.Context) ([]domain.OrgUser, error) {
	return s.org.ListAll(ctx)
}

// GetMember fetches one member.
func (s *OrgService) GetMember(ctx context.Context, id string) (*domain.OrgUser, error) {
	return s.org.GetByID(ctx, id)
}
