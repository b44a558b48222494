package rbac

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// fakeStore is an in-memory HierarchyStore and PermissionSource used by the
// resolver and hierarchy tests.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]bool
	managers map[uuid.UUID]*uuid.UUID
	// permissions[userID][component] -> permission sets of assigned roles
	permissions map[uuid.UUID]map[string][]PermissionSet
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[uuid.UUID]bool),
		managers:    make(map[uuid.UUID]*uuid.UUID),
		permissions: make(map[uuid.UUID]map[string][]PermissionSet),
	}
}

func (s *fakeStore) addUser() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = true
	return id
}

func (s *fakeStore) setManager(userID uuid.UUID, managerID *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[userID] = managerID
}

func (s *fakeStore) grant(userID uuid.UUID, component string, set PermissionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permissions[userID] == nil {
		s.permissions[userID] = make(map[string][]PermissionSet)
	}
	s.permissions[userID][component] = append(s.permissions[userID][component], set)
}

func (s *fakeStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *fakeStore) Manager(_ context.Context, id uuid.UUID) (*uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.managers[id], nil
}

func (s *fakeStore) DirectReports(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reports []uuid.UUID
	for userID, managerID := range s.managers {
		if managerID != nil && *managerID == id {
			reports = append(reports, userID)
		}
	}
	return reports, nil
}

func (s *fakeStore) UpdateManager(_ context.Context, id uuid.UUID, managerID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[id] = managerID
	return nil
}

func (s *fakeStore) WithTx(_ context.Context, fn func(HierarchyStore) error) error {
	return fn(s)
}

func (s *fakeStore) ListUserPermissionSets(_ context.Context, userID uuid.UUID, component string) ([]PermissionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissions[userID][component], nil
}
