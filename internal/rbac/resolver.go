package rbac

import (
	"context"

	"github.com/google/uuid"
)

// PermissionSource lists the permission documents of every role assigned to
// a user for one component.
type PermissionSource interface {
	ListUserPermissionSets(ctx context.Context, userID uuid.UUID, component string) ([]PermissionSet, error)
}

// Resolver computes effective permission scopes and authorizes actions. It
// is stateless: every call reads current role assignments and hierarchy
// rows, so role or manager changes take effect on the next request.
type Resolver struct {
	permissions PermissionSource
	hierarchy   *Hierarchy
}

func NewResolver(permissions PermissionSource, hierarchy *Hierarchy) *Resolver {
	return &Resolver{permissions: permissions, hierarchy: hierarchy}
}

// Hierarchy exposes the manager tree the resolver consults.
func (r *Resolver) Hierarchy() *Hierarchy {
	return r.hierarchy
}

// EffectivePermissions unions the permission sets of all roles assigned to
// the user for the component, keeping the broadest scope per action. A user
// with no roles for the component - including an unknown user - gets
// ScopeNone for every action. Admin status grants nothing here.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID uuid.UUID, component string) (PermissionSet, error) {
	sets, err := r.permissions.ListUserPermissionSets(ctx, userID, component)
	if err != nil {
		return nil, err
	}

	effective := NewPermissionSet()
	for _, set := range sets {
		effective.Union(set)
	}
	return effective, nil
}

// Authorize reports whether the user may perform the action on the
// component, optionally against a resource owned by ownerID.
//
// Create never targets an existing resource, so any grant above ScopeNone
// allows it. For the other actions, ScopeOwn requires ownerID == userID and
// ScopeSubordinates additionally accepts transitive subordinates. A nil
// ownerID on those scopes denies: list endpoints must go through
// FilterScope instead.
func (r *Resolver) Authorize(ctx context.Context, userID uuid.UUID, component string, action Action, ownerID *uuid.UUID) (bool, error) {
	scope, err := r.FilterScope(ctx, userID, component, action)
	if err != nil {
		return false, err
	}

	switch scope {
	case ScopeAll:
		return true, nil
	case ScopeOwn:
		if action == ActionCreate {
			return true, nil
		}
		return ownerID != nil && *ownerID == userID, nil
	case ScopeSubordinates:
		if action == ActionCreate {
			return true, nil
		}
		if ownerID == nil {
			return false, nil
		}
		if *ownerID == userID {
			return true, nil
		}
		return r.hierarchy.IsSubordinateOf(ctx, *ownerID, userID)
	default:
		return false, nil
	}
}

// FilterScope returns the effective scope for one action so list endpoints
// can build a row filter: no restriction for all, an owner-in-subordinates
// filter for subordinates, an owner-equality filter for own, and an empty
// result for none.
func (r *Resolver) FilterScope(ctx context.Context, userID uuid.UUID, component string, action Action) (Scope, error) {
	effective, err := r.EffectivePermissions(ctx, userID, component)
	if err != nil {
		return ScopeNone, err
	}
	return effective.Get(action), nil
}
