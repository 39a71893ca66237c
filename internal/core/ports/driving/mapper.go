package driving

import (
	"context"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

// Mapper resolves informal folder and file names to subjects.
type Mapper interface {
	// Resolve returns the best subject for an informal name, or ok=false
	// when no candidate scores high enough. Successful alias or fuzzy
	// resolutions are persisted as auto-derived mappings.
	Resolve(ctx context.Context, name string, scope domain.MappingScope) (subject *domain.Subject, ok bool, err error)

	// SuggestMany ranks all candidate subjects for a name and returns
	// the top matches for human confirmation.
	SuggestMany(ctx context.Context, name string, scope domain.MappingScope, limit int) ([]domain.Suggestion, error)

	// Confirm records a user-confirmed mapping. Confirmed mappings are
	// never replaced by the mapper's own logic.
	Confirm(ctx context.Context, name, subjectID string, scope domain.MappingScope) error
}
