package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const componentTasks = "tasks"

func perms(create, read, update, del Scope) PermissionSet {
	return PermissionSet{
		ActionCreate: create,
		ActionRead:   read,
		ActionUpdate: update,
		ActionDelete: del,
	}
}

func TestEffectivePermissions_NoRoles(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	u := store.addUser()

	effective, err := r.EffectivePermissions(context.Background(), u, componentTasks)
	require.NoError(t, err)

	for _, action := range Actions {
		assert.Equal(t, ScopeNone, effective.Get(action))
	}
}

func TestEffectivePermissions_UnknownUserFailsClosed(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))

	effective, err := r.EffectivePermissions(context.Background(), uuid.New(), componentTasks)
	require.NoError(t, err, "unknown identity resolves to zero privilege, not an error")
	assert.Equal(t, ScopeNone, effective.Get(ActionRead))
}

func TestEffectivePermissions_UnionTakesBroadest(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	u := store.addUser()
	store.grant(u, componentTasks, perms(ScopeOwn, ScopeOwn, ScopeOwn, ScopeOwn))
	store.grant(u, componentTasks, perms(ScopeNone, ScopeAll, ScopeSubordinates, ScopeNone))

	effective, err := r.EffectivePermissions(context.Background(), u, componentTasks)
	require.NoError(t, err)

	assert.Equal(t, ScopeOwn, effective.Get(ActionCreate))
	assert.Equal(t, ScopeAll, effective.Get(ActionRead))
	assert.Equal(t, ScopeSubordinates, effective.Get(ActionUpdate))
	assert.Equal(t, ScopeOwn, effective.Get(ActionDelete))
}

func TestEffectivePermissions_ComponentScoped(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	u := store.addUser()
	store.grant(u, "users", perms(ScopeAll, ScopeAll, ScopeAll, ScopeAll))

	effective, err := r.EffectivePermissions(context.Background(), u, componentTasks)
	require.NoError(t, err)
	assert.Equal(t, ScopeNone, effective.Get(ActionRead), "roles never span components")
}

func TestAuthorize_OwnScope(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	u := store.addUser()
	other := store.addUser()
	store.grant(u, componentTasks, perms(ScopeOwn, ScopeOwn, ScopeOwn, ScopeOwn))

	ctx := context.Background()

	ok, err := r.Authorize(ctx, u, componentTasks, ActionUpdate, &u)
	require.NoError(t, err)
	assert.True(t, ok, "own resource is allowed")

	ok, err = r.Authorize(ctx, u, componentTasks, ActionUpdate, &other)
	require.NoError(t, err)
	assert.False(t, ok, "someone else's resource is denied")

	ok, err = r.Authorize(ctx, u, componentTasks, ActionRead, nil)
	require.NoError(t, err)
	assert.False(t, ok, "missing owner id denies under own scope")

	ok, err = r.Authorize(ctx, u, componentTasks, ActionCreate, nil)
	require.NoError(t, err)
	assert.True(t, ok, "create has no target resource")
}

func TestAuthorize_SubordinatesScope(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	r := NewResolver(store, h)

	manager := store.addUser()
	report := store.addUser()
	deepReport := store.addUser()
	outsider := store.addUser()
	store.setManager(report, &manager)
	store.setManager(deepReport, &report)

	store.grant(manager, componentTasks, perms(ScopeOwn, ScopeSubordinates, ScopeSubordinates, ScopeNone))

	ctx := context.Background()

	ok, err := r.Authorize(ctx, manager, componentTasks, ActionRead, &report)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Authorize(ctx, manager, componentTasks, ActionUpdate, &deepReport)
	require.NoError(t, err)
	assert.True(t, ok, "subordinates scope reaches arbitrary depth")

	ok, err = r.Authorize(ctx, manager, componentTasks, ActionRead, &manager)
	require.NoError(t, err)
	assert.True(t, ok, "subordinates scope includes the caller's own resources")

	ok, err = r.Authorize(ctx, manager, componentTasks, ActionRead, &outsider)
	require.NoError(t, err)
	assert.False(t, ok)

	// delete was granted to nobody.
	ok, err = r.Authorize(ctx, manager, componentTasks, ActionDelete, &report)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorize_AllScope(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	admin := store.addUser()
	stranger := store.addUser()
	store.grant(admin, componentTasks, perms(ScopeAll, ScopeAll, ScopeAll, ScopeAll))

	ok, err := r.Authorize(context.Background(), admin, componentTasks, ActionDelete, &stranger)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Mirrors the manager/user role pairing the seed data ships with.
func TestAuthorize_ManagerRoleScenario(t *testing.T) {
	store := newFakeStore()
	h := NewHierarchy(store)
	r := NewResolver(store, h)

	m := store.addUser()
	s := store.addUser()
	store.setManager(s, &m)

	store.grant(m, componentTasks, perms(ScopeOwn, ScopeSubordinates, ScopeSubordinates, ScopeNone))
	store.grant(s, componentTasks, perms(ScopeOwn, ScopeOwn, ScopeOwn, ScopeOwn))

	ctx := context.Background()

	ok, err := r.Authorize(ctx, m, componentTasks, ActionRead, &s)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Authorize(ctx, m, componentTasks, ActionDelete, &s)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Authorize(ctx, s, componentTasks, ActionRead, &m)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterScope(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	u := store.addUser()
	store.grant(u, componentTasks, perms(ScopeOwn, ScopeSubordinates, ScopeNone, ScopeNone))

	ctx := context.Background()

	scope, err := r.FilterScope(ctx, u, componentTasks, ActionRead)
	require.NoError(t, err)
	assert.Equal(t, ScopeSubordinates, scope)

	scope, err = r.FilterScope(ctx, u, componentTasks, ActionUpdate)
	require.NoError(t, err)
	assert.Equal(t, ScopeNone, scope)
}

func TestFilterScope_RoleRemovalTakesEffectImmediately(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, NewHierarchy(store))
	u := store.addUser()
	store.grant(u, componentTasks, perms(ScopeOwn, ScopeSubordinates, ScopeSubordinates, ScopeNone))

	ctx := context.Background()

	scope, err := r.FilterScope(ctx, u, componentTasks, ActionRead)
	require.NoError(t, err)
	assert.Equal(t, ScopeSubordinates, scope)

	// Deleting the role removes its assignments; no cached snapshot
	// survives it.
	store.mu.Lock()
	store.permissions[u][componentTasks] = nil
	store.mu.Unlock()

	scope, err = r.FilterScope(ctx, u, componentTasks, ActionRead)
	require.NoError(t, err)
	assert.Equal(t, ScopeNone, scope)
}
