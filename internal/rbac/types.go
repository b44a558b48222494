package rbac

import (
	"encoding/json"
	"fmt"
)

// Action is one of the four CRUD operations a role can grant.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every action in a fixed order.
var Actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Scope is the breadth of a permission grant for one action.
type Scope string

const (
	// ScopeNone denies the action. Serialized as JSON null.
	ScopeNone         Scope = "none"
	ScopeOwn          Scope = "own"
	ScopeSubordinates Scope = "subordinates"
	ScopeAll          Scope = "all"
)

// scopeRank orders scopes by breadth: all > subordinates > own > none.
// Permission union reduces per action to the highest rank.
var scopeRank = map[Scope]int{
	ScopeNone:         0,
	ScopeOwn:          1,
	ScopeSubordinates: 2,
	ScopeAll:          3,
}

func (s Scope) Valid() bool {
	_, ok := scopeRank[s]
	return ok
}

// Broader reports whether s grants strictly wider access than other.
func (s Scope) Broader(other Scope) bool {
	return scopeRank[s] > scopeRank[other]
}

// BroaderOf returns the wider of the two scopes.
func BroaderOf(a, b Scope) Scope {
	if b.Broader(a) {
		return b
	}
	return a
}

// PermissionSet maps each action to its granted scope. A missing action
// counts as ScopeNone. The JSON form uses null for denied actions, which is
// how role permission documents are persisted.
type PermissionSet map[Action]Scope

// NewPermissionSet returns a set denying every action.
func NewPermissionSet() PermissionSet {
	return PermissionSet{
		ActionCreate: ScopeNone,
		ActionRead:   ScopeNone,
		ActionUpdate: ScopeNone,
		ActionDelete: ScopeNone,
	}
}

// Get treats missing actions as ScopeNone.
func (p PermissionSet) Get(action Action) Scope {
	if scope, ok := p[action]; ok {
		return scope
	}
	return ScopeNone
}

// Union merges other into p, keeping the broadest scope per action.
func (p PermissionSet) Union(other PermissionSet) {
	for _, action := range Actions {
		p[action] = BroaderOf(p.Get(action), other.Get(action))
	}
}

// Validate rejects unknown actions and scope values.
func (p PermissionSet) Validate() error {
	for action, scope := range p {
		if !action.Valid() {
			return fmt.Errorf("unknown action: %s", action)
		}
		if !scope.Valid() {
			return fmt.Errorf("unknown scope for action %s: %s", action, scope)
		}
	}
	return nil
}

func (p PermissionSet) MarshalJSON() ([]byte, error) {
	out := make(map[Action]*Scope, len(Actions))
	for _, action := range Actions {
		scope := p.Get(action)
		if scope == ScopeNone {
			out[action] = nil
			continue
		}
		s := scope
		out[action] = &s
	}
	return json.Marshal(out)
}

func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	var raw map[Action]*Scope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	set := NewPermissionSet()
	for action, scope := range raw {
		if scope == nil {
			set[action] = ScopeNone
			continue
		}
		set[action] = *scope
	}

	if err := set.Validate(); err != nil {
		return err
	}

	*p = set
	return nil
}
