package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"task-service/internal/audit"
	"task-service/internal/auth"
	"task-service/internal/domain/task"
	"task-service/internal/domain/user"
	"task-service/internal/rbac"
	apperrors "task-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// noopAudit satisfies AuditRecorder without a database.
type noopAudit struct{}

func (noopAudit) LogFromContext(echo.Context, audit.Record) {}

// recordingAudit captures records for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	records []audit.Record
}

func (r *recordingAudit) LogFromContext(_ echo.Context, rec audit.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// fakeUserRepo is an in-memory repository.UserRepository. It doubles as the
// hierarchy store, so rbac.Hierarchy works against it directly.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUserRepo) add(u *user.User) *user.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, input user.CreateUserInput) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == input.Email && existing.DeletedAt == nil {
			return nil, apperrors.Conflict("user with this email already exists")
		}
	}
	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		IsAdmin:      input.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, u := range f.users {
		if u.DeletedAt == nil {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.NotFound("user not found")
	}
	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.PasswordHash != nil {
		u.PasswordHash = *input.PasswordHash
	}
	if input.FirstName != nil {
		u.FirstName = input.FirstName
	}
	if input.LastName != nil {
		u.LastName = input.LastName
	}
	if input.Note != nil {
		u.Note = input.Note
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	if input.IsAdmin != nil {
		u.IsAdmin = *input.IsAdmin
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return apperrors.NotFound("user not found")
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (f *fakeUserRepo) Restore(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt == nil {
		return apperrors.NotFound("user not found")
	}
	u.DeletedAt = nil
	return nil
}

func (f *fakeUserRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperrors.NotFound("user not found")
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ListDeleted(_ context.Context, _, _ int) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, u := range f.users {
		if u.DeletedAt != nil {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	return ok && u.DeletedAt == nil, nil
}

func (f *fakeUserRepo) Manager(_ context.Context, id uuid.UUID) (*uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return u.ManagerID, nil
}

func (f *fakeUserRepo) DirectReports(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, u := range f.users {
		if u.ManagerID != nil && *u.ManagerID == id && u.DeletedAt == nil {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateManager(_ context.Context, id uuid.UUID, managerID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	u.ManagerID = managerID
	return nil
}

func (f *fakeUserRepo) WithTx(_ context.Context, fn func(rbac.HierarchyStore) error) error {
	return fn(f)
}

// fakeTaskRepo is an in-memory repository.TaskRepository.
type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*task.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*task.Task)}
}

func (f *fakeTaskRepo) add(ownerID uuid.UUID, title string) *task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	t := &task.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    task.StatusTodo,
		Priority:  task.PriorityMedium,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.tasks[t.ID] = t
	return t
}

func (f *fakeTaskRepo) Create(_ context.Context, input task.CreateTaskInput) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	t := &task.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		UserID:      input.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil, apperrors.NotFound("task not found")
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskRepo) ListAll(_ context.Context, _, _ int) ([]*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*task.Task
	for _, t := range f.tasks {
		if t.DeletedAt == nil {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListByOwners(_ context.Context, ownerIDs []uuid.UUID, _, _ int) ([]*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owners := make(map[uuid.UUID]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}
	var out []*task.Task
	for _, t := range f.tasks {
		if _, ok := owners[t.UserID]; ok && t.DeletedAt == nil {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, id uuid.UUID, input task.UpdateTaskInput) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.DeletedAt != nil {
		return nil, apperrors.NotFound("task not found")
	}
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Status != nil {
		t.Status = *input.Status
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (f *fakeTaskRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.DeletedAt != nil {
		return apperrors.NotFound("task not found")
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

func (f *fakeTaskRepo) Restore(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok || t.DeletedAt == nil {
		return apperrors.NotFound("task not found")
	}
	t.DeletedAt = nil
	return nil
}

func (f *fakeTaskRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return apperrors.NotFound("task not found")
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) ListDeleted(_ context.Context, _, _ int) ([]*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*task.Task
	for _, t := range f.tasks {
		if t.DeletedAt != nil {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) EmptyTrash(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for id, t := range f.tasks {
		if t.DeletedAt != nil {
			delete(f.tasks, id)
			purged++
		}
	}
	return purged, nil
}

// fakePermSource grants permission sets per (user, component).
type fakePermSource struct {
	mu     sync.Mutex
	grants map[uuid.UUID]map[string][]rbac.PermissionSet
}

func newFakePermSource() *fakePermSource {
	return &fakePermSource{grants: make(map[uuid.UUID]map[string][]rbac.PermissionSet)}
}

func (f *fakePermSource) grant(userID uuid.UUID, component string, set rbac.PermissionSet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grants[userID] == nil {
		f.grants[userID] = make(map[string][]rbac.PermissionSet)
	}
	f.grants[userID][component] = append(f.grants[userID][component], set)
}

func (f *fakePermSource) ListUserPermissionSets(_ context.Context, userID uuid.UUID, component string) ([]rbac.PermissionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grants[userID][component], nil
}

func taskPerms(create, read, update, del rbac.Scope) rbac.PermissionSet {
	return rbac.PermissionSet{
		rbac.ActionCreate: create,
		rbac.ActionRead:   read,
		rbac.ActionUpdate: update,
		rbac.ActionDelete: del,
	}
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func setAuth(c echo.Context, u *user.User) {
	c.Set(auth.ContextKeyUserID, u.ID)
	c.Set(auth.ContextKeyUser, u)
	c.Set(auth.ContextKeyAuthType, auth.AuthTypeJWT)
}

func testUser(email string) *user.User {
	return &user.User{
		ID:       uuid.New(),
		Email:    email,
		IsActive: true,
	}
}
