package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds root -> mid -> leaf and returns the three ids.
func chain(store *fakeStore) (root, mid, leaf uuid.UUID) {
	root = store.addUser()
	mid = store.addUser()
	leaf = store.addUser()
	store.setManager(mid, &root)
	store.setManager(leaf, &mid)
	return root, mid, leaf
}

func TestTransitiveSubordinates(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	root, mid, leaf := chain(store)
	sibling := store.addUser()
	store.setManager(sibling, &root)

	subs, err := h.TransitiveSubordinates(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, subs, 3)
	assert.Contains(t, subs, mid)
	assert.Contains(t, subs, leaf)
	assert.Contains(t, subs, sibling)
	assert.NotContains(t, subs, root, "manager must not be its own subordinate")
}

func TestTransitiveSubordinates_Empty(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	lone := store.addUser()

	subs, err := h.TransitiveSubordinates(context.Background(), lone)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestTransitiveSubordinates_CorruptCycleTerminates(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	a := store.addUser()
	b := store.addUser()
	// Force an invariant violation directly in the store.
	store.setManager(a, &b)
	store.setManager(b, &a)

	subs, err := h.TransitiveSubordinates(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Contains(t, subs, b)
}

func TestIsSubordinateOf(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	root, mid, leaf := chain(store)
	outsider := store.addUser()

	ctx := context.Background()

	ok, err := h.IsSubordinateOf(ctx, leaf, root)
	require.NoError(t, err)
	assert.True(t, ok, "leaf is a transitive subordinate of root")

	ok, err = h.IsSubordinateOf(ctx, mid, root)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.IsSubordinateOf(ctx, root, leaf)
	require.NoError(t, err)
	assert.False(t, ok, "relation is not symmetric")

	ok, err = h.IsSubordinateOf(ctx, outsider, root)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.IsSubordinateOf(ctx, root, root)
	require.NoError(t, err)
	assert.False(t, ok, "a user is not its own subordinate")
}

func TestSetManager(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	a := store.addUser()
	b := store.addUser()

	ctx := context.Background()

	require.NoError(t, h.SetManager(ctx, a, &b))
	ok, err := h.IsSubordinateOf(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	// Idempotent: same assignment again succeeds without changing state.
	require.NoError(t, h.SetManager(ctx, a, &b))
	subs, err := h.TransitiveSubordinates(ctx, b)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	// Clearing the manager detaches the subtree.
	require.NoError(t, h.SetManager(ctx, a, nil))
	subs, err = h.TransitiveSubordinates(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSetManager_SelfCycle(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	a := store.addUser()

	err := h.SetManager(context.Background(), a, &a)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestSetManager_SubordinateCycle(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	root, mid, leaf := chain(store)

	ctx := context.Background()

	// Direct report as manager.
	err := h.SetManager(ctx, root, &mid)
	assert.ErrorIs(t, err, ErrCycle)

	// Deep subordinate as manager.
	err = h.SetManager(ctx, root, &leaf)
	assert.ErrorIs(t, err, ErrCycle)

	// Hierarchy unchanged after the rejected writes.
	ok, err := h.IsSubordinateOf(ctx, leaf, root)
	require.NoError(t, err)
	assert.True(t, ok)
	managerID, err := store.Manager(ctx, root)
	require.NoError(t, err)
	assert.Nil(t, managerID)
}

func TestSetManager_NotFound(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	a := store.addUser()
	ghost := uuid.New()

	ctx := context.Background()

	assert.ErrorIs(t, h.SetManager(ctx, ghost, &a), ErrNotFound)
	assert.ErrorIs(t, h.SetManager(ctx, a, &ghost), ErrNotFound)
}

func TestManagerChain(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	root, mid, leaf := chain(store)

	chain, err := h.ManagerChain(context.Background(), leaf)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{mid, root}, chain)

	chain, err = h.ManagerChain(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, chain)
}
