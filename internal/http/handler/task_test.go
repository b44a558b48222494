package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"task-service/internal/domain/user"
	"task-service/internal/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskTestHandler(users *fakeUserRepo, perms *fakePermSource) (*TaskHandler, *fakeTaskRepo) {
	tasks := newFakeTaskRepo()
	resolver := rbac.NewResolver(perms, rbac.NewHierarchy(users))
	return NewTaskHandler(tasks, resolver, noopAudit{}, 100), tasks
}

func TestTaskCreate_DeniedWithoutGrant(t *testing.T) {
	users := newFakeUserRepo()
	h, _ := newTaskTestHandler(users, newFakePermSource())

	u := testUser("nobody@example.com")
	users.add(u)

	c, rec := newTestContext(http.MethodPost, "/api/v1/tasks", `{"title":"write report"}`)
	setAuth(c, u)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTaskCreate_OwnScopeSucceeds(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, _ := newTaskTestHandler(users, perms)

	u := testUser("worker@example.com")
	users.add(u)
	perms.grant(u.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn))

	c, rec := newTestContext(http.MethodPost, "/api/v1/tasks", `{"title":"write report"}`)
	setAuth(c, u)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "write report", resp.Title)
	assert.Equal(t, "todo", resp.Status)
	assert.Equal(t, "medium", resp.Priority)
	assert.Equal(t, u.ID.String(), resp.UserID)
}

func TestTaskCreate_RejectsUnknownStatus(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, _ := newTaskTestHandler(users, perms)

	u := testUser("worker@example.com")
	users.add(u)
	perms.grant(u.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn))

	c, rec := newTestContext(http.MethodPost, "/api/v1/tasks", `{"title":"x","status":"someday"}`)
	setAuth(c, u)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskGet_MissingTaskIs404EvenWithoutPermission(t *testing.T) {
	users := newFakeUserRepo()
	h, _ := newTaskTestHandler(users, newFakePermSource())

	u := testUser("nobody@example.com")
	users.add(u)

	c, rec := newTestContext(http.MethodGet, "/", "")
	c.SetParamNames(paramID)
	c.SetParamValues("b9f6d109-57b9-4de3-9d40-d61653f5d6a8")
	setAuth(c, u)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code, "existence is revealed before permission is checked")
}

func TestTaskGet_ForeignTaskIs403UnderOwnScope(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, tasks := newTaskTestHandler(users, perms)

	u := testUser("worker@example.com")
	other := testUser("other@example.com")
	users.add(u)
	users.add(other)
	perms.grant(u.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn))

	foreign := tasks.add(other.ID, "their task")

	c, rec := newTestContext(http.MethodGet, "/", "")
	c.SetParamNames(paramID)
	c.SetParamValues(foreign.ID.String())
	setAuth(c, u)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTaskGet_ManagerReadsSubordinateTask(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, tasks := newTaskTestHandler(users, perms)

	manager := testUser("manager@example.com")
	report := testUser("report@example.com")
	users.add(manager)
	report.ManagerID = &manager.ID
	users.add(report)
	perms.grant(manager.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeSubordinates, rbac.ScopeSubordinates, rbac.ScopeNone))

	owned := tasks.add(report.ID, "report task")

	c, rec := newTestContext(http.MethodGet, "/", "")
	c.SetParamNames(paramID)
	c.SetParamValues(owned.ID.String())
	setAuth(c, manager)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskList_ScopeDecidesVisibility(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, tasks := newTaskTestHandler(users, perms)

	manager := testUser("manager@example.com")
	report := testUser("report@example.com")
	outsider := testUser("outsider@example.com")
	users.add(manager)
	report.ManagerID = &manager.ID
	users.add(report)
	users.add(outsider)

	tasks.add(manager.ID, "own")
	tasks.add(report.ID, "subordinate")
	tasks.add(outsider.ID, "foreign")

	perms.grant(manager.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeSubordinates, rbac.ScopeNone, rbac.ScopeNone))
	perms.grant(report.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn))

	tests := []struct {
		name   string
		caller *user.User
		want   int
	}{
		{"manager sees own plus subtree", manager, 2},
		{"report sees only own", report, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet, "/api/v1/tasks", "")
			setAuth(c, tt.caller)

			require.NoError(t, h.List(c))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp []TaskResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Len(t, resp, tt.want)
		})
	}
}

func TestTaskList_NoGrantIs403(t *testing.T) {
	users := newFakeUserRepo()
	h, _ := newTaskTestHandler(users, newFakePermSource())

	u := testUser("nobody@example.com")
	users.add(u)

	c, rec := newTestContext(http.MethodGet, "/api/v1/tasks", "")
	setAuth(c, u)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTaskDelete_ManagerDeniedBySeedShape(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, tasks := newTaskTestHandler(users, perms)

	manager := testUser("manager@example.com")
	report := testUser("report@example.com")
	users.add(manager)
	report.ManagerID = &manager.ID
	users.add(report)
	perms.grant(manager.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeSubordinates, rbac.ScopeSubordinates, rbac.ScopeNone))

	owned := tasks.add(report.ID, "report task")

	c, rec := newTestContext(http.MethodDelete, "/", "")
	c.SetParamNames(paramID)
	c.SetParamValues(owned.ID.String())
	setAuth(c, manager)

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTaskDelete_SoftDeletesAndAudits(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	tasks := newFakeTaskRepo()
	resolver := rbac.NewResolver(perms, rbac.NewHierarchy(users))
	rec := &recordingAudit{}
	h := NewTaskHandler(tasks, resolver, rec, 100)

	u := testUser("worker@example.com")
	users.add(u)
	perms.grant(u.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn))
	owned := tasks.add(u.ID, "mine")

	c, httpRec := newTestContext(http.MethodDelete, "/", "")
	c.SetParamNames(paramID)
	c.SetParamValues(owned.ID.String())
	setAuth(c, u)

	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusNoContent, httpRec.Code)

	deleted, err := tasks.ListDeleted(c.Request().Context(), 100, 0)
	require.NoError(t, err)
	assert.Len(t, deleted, 1, "delete is soft; the row moves to trash")

	require.Len(t, rec.records, 1)
	assert.Equal(t, owned.ID.String(), rec.records[0].RecordID)
}

func TestTaskUpdate_InvalidBodyRejected(t *testing.T) {
	users := newFakeUserRepo()
	perms := newFakePermSource()
	h, tasks := newTaskTestHandler(users, perms)

	u := testUser("worker@example.com")
	users.add(u)
	perms.grant(u.ID, componentTasks, taskPerms(rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn, rbac.ScopeOwn))
	owned := tasks.add(u.ID, "mine")

	body := `{"title":"ok","unexpected":"field"}`
	c, rec := newTestContext(http.MethodPut, "/", body)
	c.SetParamNames(paramID)
	c.SetParamValues(owned.ID.String())
	setAuth(c, u)

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprintf("unexpected body: %s", rec.Body.String()))
}
