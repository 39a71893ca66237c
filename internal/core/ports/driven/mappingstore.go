package driven

import (
	"context"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// MappingStore persists resolved subject mappings. It is the mapper's
// write-through cache: new resolutions are persisted immediately.
type MappingStore interface {
	// Lookup finds the mapping for a normalized name, trying the user
	// scope, then the group scope, then global. First hit wins.
	Lookup(ctx context.Context, normalized string, scope domain.MappingScope) (*domain.SubjectMapping, error)

	// Save stores a mapping keyed by (normalized name, scope). An
	// existing user-confirmed mapping is never replaced by an
	// auto-derived one; a confirmed save always wins.
	Save(ctx context.Context, mapping domain.SubjectMapping) error

	// Delete removes a mapping by ID.
	Delete(ctx context.Context, id string) error
}

// SubjectStore reads the bounded taxonomy catalog.
type SubjectStore interface {
	// Get retrieves a subject by ID.
	Get(ctx context.Context, id string) (*domain.Subject, error)

	// List returns the subjects available in a group scope. An empty
	// groupID returns the global catalog.
	List(ctx context.Context, groupID string) ([]domain.Subject, error)

	// Save stores or updates a subject.
	Save(ctx context.Context, subject domain.Subject) error
}
