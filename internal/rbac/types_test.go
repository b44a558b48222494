package rbac

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroaderOf(t *testing.T) {
	assert.Equal(t, ScopeAll, BroaderOf(ScopeAll, ScopeSubordinates))
	assert.Equal(t, ScopeAll, BroaderOf(ScopeOwn, ScopeAll))
	assert.Equal(t, ScopeSubordinates, BroaderOf(ScopeSubordinates, ScopeOwn))
	assert.Equal(t, ScopeOwn, BroaderOf(ScopeNone, ScopeOwn))
	assert.Equal(t, ScopeNone, BroaderOf(ScopeNone, ScopeNone))
}

func TestPermissionSetJSON_NullMeansDeny(t *testing.T) {
	var set PermissionSet
	err := json.Unmarshal([]byte(`{"create":"own","read":"subordinates","update":null,"delete":null}`), &set)
	require.NoError(t, err)

	assert.Equal(t, ScopeOwn, set.Get(ActionCreate))
	assert.Equal(t, ScopeSubordinates, set.Get(ActionRead))
	assert.Equal(t, ScopeNone, set.Get(ActionUpdate))
	assert.Equal(t, ScopeNone, set.Get(ActionDelete))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `{"create":"own","read":"subordinates","update":null,"delete":null}`, string(data))
}

func TestPermissionSetJSON_RejectsUnknownScope(t *testing.T) {
	var set PermissionSet
	err := json.Unmarshal([]byte(`{"read":"everything"}`), &set)
	assert.Error(t, err)
}

func TestPermissionSetJSON_RejectsUnknownAction(t *testing.T) {
	var set PermissionSet
	err := json.Unmarshal([]byte(`{"approve":"all"}`), &set)
	assert.Error(t, err)
}

func TestPermissionSetValidate(t *testing.T) {
	require.NoError(t, NewPermissionSet().Validate())

	bad := PermissionSet{ActionRead: Scope("global")}
	assert.Error(t, bad.Validate())
}
