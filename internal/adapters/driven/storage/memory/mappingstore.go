package memory

import (
	"context"
	"sync"
	"time"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// Ensure MappingStore implements the interface.
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore is an in-memory implementation of driven.MappingStore.
type MappingStore struct {
	mu       sync.Mutex
	mappings map[string]domain.SubjectMapping // keyed by ID
}

// NewMappingStore creates a new in-memory mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{mappings: make(map[string]domain.SubjectMapping)}
}

// Lookup finds a mapping for a normalized name, narrowest scope first.
func (s *MappingStore) Lookup(_ context.Context, normalized string, scope domain.MappingScope) (*domain.SubjectMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.UserID != "" {
		if m := s.find(normalized, scope.UserID, ""); m != nil {
			return m, nil
		}
	}
	if scope.GroupID != "" {
		if m := s.find(normalized, "", scope.GroupID); m != nil {
			return m, nil
		}
	}
	if m := s.find(normalized, "", ""); m != nil {
		return m, nil
	}
	return nil, domain.ErrNotFound
}

// Save stores a mapping, scoped-unique by (name, user, group). A
// confirmed mapping is never replaced by an auto-derived one.
func (s *MappingStore) Save(_ context.Context, mapping domain.SubjectMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.find(mapping.InformalName, mapping.UserID, mapping.GroupID); existing != nil {
		if existing.Confirmed && !mapping.Confirmed {
			return nil
		}
		mapping.ID = existing.ID
		mapping.CreatedAt = existing.CreatedAt
	}
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now().UTC()
	}

	s.mappings[mapping.ID] = mapping
	return nil
}

// Delete removes a mapping by ID.
func (s *MappingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mappings, id)
	return nil
}

// find must be called with the lock held.
func (s *MappingStore) find(normalized, userID, groupID string) *domain.SubjectMapping {
	for _, m := range s.mappings {
		if m.InformalName == normalized && m.UserID == userID && m.GroupID == groupID {
			found := m
			return &found
		}
	}
	return nil
}
