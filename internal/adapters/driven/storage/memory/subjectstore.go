package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// Ensure SubjectStore implements the interface.
var _ driven.SubjectStore = (*SubjectStore)(nil)

// SubjectStore is an in-memory implementation of driven.SubjectStore.
type SubjectStore struct {
	mu       sync.Mutex
	subjects map[string]domain.Subject
}

// NewSubjectStore creates a new in-memory subject store.
func NewSubjectStore() *SubjectStore {
	return &SubjectStore{subjects: make(map[string]domain.Subject)}
}

// Get retrieves a subject by ID.
func (s *SubjectStore) Get(_ context.Context, id string) (*domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &subject, nil
}

// List returns the subjects in a group scope; an empty groupID returns
// the global catalog plus nothing else. Results are name-ordered for
// deterministic iteration.
func (s *SubjectStore) List(_ context.Context, groupID string) ([]domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subjects []domain.Subject
	for _, subject := range s.subjects {
		if subject.GroupID == groupID || subject.GroupID == "" {
			subjects = append(subjects, subject)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// Save stores or updates a subject.
func (s *SubjectStore) Save(_ context.Context, subject domain.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject.ID] = subject
	return nil
}
