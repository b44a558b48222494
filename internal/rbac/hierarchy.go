package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// HierarchyStore is the persistence surface the hierarchy needs. The
// postgres user repository implements it; tests use an in-memory fake.
type HierarchyStore interface {
	// Exists reports whether a non-deleted user with the id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// Manager returns the user's manager id, or nil for a root user.
	Manager(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)
	// DirectReports returns ids of users whose manager is id.
	DirectReports(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	// UpdateManager persists a new manager reference (nil clears it).
	UpdateManager(ctx context.Context, id uuid.UUID, managerID *uuid.UUID) error
	// WithTx runs fn against a store bound to a single transaction.
	WithTx(ctx context.Context, fn func(HierarchyStore) error) error
}

// Hierarchy maintains and queries the manager/subordinate tree. It holds no
// state of its own; every call reads current rows.
type Hierarchy struct {
	store HierarchyStore
}

func NewHierarchy(store HierarchyStore) *Hierarchy {
	return &Hierarchy{store: store}
}

// SetManager reassigns a user's manager, or clears it when managerID is nil.
// The cycle check and the write run in one transaction. That narrows the
// window for two concurrent reassignments to jointly close a loop but does
// not eliminate it under read-committed isolation; traversals keep visited
// sets so a stored cycle terminates rather than loops.
//
// Returns ErrNotFound when either user is missing and ErrCycle when the
// candidate is the user itself or one of its transitive subordinates.
// Re-assigning the current manager succeeds as a no-op.
func (h *Hierarchy) SetManager(ctx context.Context, userID uuid.UUID, managerID *uuid.UUID) error {
	return h.store.WithTx(ctx, func(tx HierarchyStore) error {
		ok, err := tx.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		if managerID != nil {
			if *managerID == userID {
				return fmt.Errorf("%w: %s", ErrCycle, errSelfManager)
			}

			ok, err := tx.Exists(ctx, *managerID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFound
			}

			// The candidate closes a loop iff the user is already among
			// its transitive managers, so walk up from the candidate.
			onChain, err := walkUp(ctx, tx, *managerID, userID)
			if err != nil {
				return err
			}
			if onChain {
				return fmt.Errorf("%w: %s", ErrCycle, errSubordinateManager)
			}
		}

		return tx.UpdateManager(ctx, userID, managerID)
	})
}

// TransitiveSubordinates returns the ids of every user reachable by
// following manager edges down from managerID, at any depth. The manager
// itself is not included. BFS with a visited set; a cycle in stored data
// terminates instead of looping.
func (h *Hierarchy) TransitiveSubordinates(ctx context.Context, managerID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	subordinates := make(map[uuid.UUID]struct{})
	visited := map[uuid.UUID]struct{}{managerID: {}}
	queue := []uuid.UUID{managerID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		reports, err := h.store.DirectReports(ctx, current)
		if err != nil {
			return nil, err
		}

		for _, id := range reports {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			subordinates[id] = struct{}{}
			queue = append(queue, id)
		}
	}

	return subordinates, nil
}

// SubordinateIDs is TransitiveSubordinates flattened to a slice, optionally
// including the manager itself. List queries use it to build owner filters.
func (h *Hierarchy) SubordinateIDs(ctx context.Context, managerID uuid.UUID, includeSelf bool) ([]uuid.UUID, error) {
	set, err := h.TransitiveSubordinates(ctx, managerID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(set)+1)
	if includeSelf {
		ids = append(ids, managerID)
	}
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

// IsSubordinateOf reports whether candidateID sits under managerID in the
// tree. It walks up the manager chain from the candidate, which touches one
// row per level instead of expanding the whole subtree.
func (h *Hierarchy) IsSubordinateOf(ctx context.Context, candidateID, managerID uuid.UUID) (bool, error) {
	if candidateID == managerID {
		return false, nil
	}
	return walkUp(ctx, h.store, candidateID, managerID)
}

// ManagerChain returns the ids of the user's managers from the direct
// manager up to the root, in order.
func (h *Hierarchy) ManagerChain(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var chain []uuid.UUID
	visited := map[uuid.UUID]struct{}{userID: {}}
	current := userID

	for {
		managerID, err := h.store.Manager(ctx, current)
		if err != nil {
			return nil, err
		}
		if managerID == nil {
			return chain, nil
		}
		if _, seen := visited[*managerID]; seen {
			// Invariant violation in stored data; stop rather than loop.
			return chain, nil
		}
		visited[*managerID] = struct{}{}
		chain = append(chain, *managerID)
		current = *managerID
	}
}

// walkUp follows manager edges from startID looking for targetID.
func walkUp(ctx context.Context, store HierarchyStore, startID, targetID uuid.UUID) (bool, error) {
	visited := make(map[uuid.UUID]struct{})
	current := startID

	for {
		if _, seen := visited[current]; seen {
			return false, nil
		}
		visited[current] = struct{}{}

		managerID, err := store.Manager(ctx, current)
		if err != nil {
			return false, err
		}
		if managerID == nil {
			return false, nil
		}
		if *managerID == targetID {
			return true, nil
		}
		current = *managerID
	}
}
