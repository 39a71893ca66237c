package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
	"github.com/l8testudy/drivevault/internal/core/ports/driving"
	"github.com/l8testudy/drivevault/internal/logger"
)

// Ensure SubjectMapper implements the interface.
var _ driving.Mapper = (*SubjectMapper)(nil)

const (
	// acceptScore is the minimum similarity for an automatic resolution.
	acceptScore = 0.6

	// containedScore is the floor given to names contained verbatim in a
	// subject name.
	containedScore = 0.8

	// suggestFloor is the minimum similarity for a human-facing suggestion.
	suggestFloor = 0.3

	defaultSuggestLimit = 5
)

var (
	namePrefixes = []string{"fach ", "kurs ", "lk ", "gk "}

	// Keeps letters, digits, underscores, whitespace and hyphens.
	nonNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
)

// commonAliases maps frequent German abbreviations to canonical subject
// names. Checked after the persisted mappings, before fuzzy matching.
var commonAliases = map[string]string{
	"ph":          "physik",
	"ma":          "mathematik",
	"mathe":       "mathematik",
	"de":          "deutsch",
	"en":          "englisch",
	"eng":         "englisch",
	"fr":          "französisch",
	"bio":         "biologie",
	"che":         "chemie",
	"chem":        "chemie",
	"geo":         "geographie",
	"gdt":         "grundlagen der technik",
	"technik":     "grundlagen der technik",
	"inf":         "informatik",
	"info":        "informatik",
	"sport":       "sport",
	"kunst":       "kunst",
	"musik":       "musik",
	"gesch":       "geschichte",
	"geschichte":  "geschichte",
	"powi":        "politik und wirtschaft",
	"politik":     "politik und wirtschaft",
	"reli":        "religion",
	"religion":    "religion",
	"ethik":       "ethik",
	"phil":        "philosophie",
	"philosophie": "philosophie",
}

// SubjectMapper resolves informal folder and file names against the
// subject catalog. Every successful resolution is written through to the
// mapping store, so repeated syncs of the same folder skip the fuzzy
// matching entirely.
type SubjectMapper struct {
	mappings driven.MappingStore
	subjects driven.SubjectStore
}

// NewSubjectMapper creates a new subject mapper.
func NewSubjectMapper(mappings driven.MappingStore, subjects driven.SubjectStore) *SubjectMapper {
	return &SubjectMapper{
		mappings: mappings,
		subjects: subjects,
	}
}

// Resolve returns the best subject for an informal name.
func (m *SubjectMapper) Resolve(ctx context.Context, name string, scope domain.MappingScope) (*domain.Subject, bool, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return nil, false, nil
	}

	// 1. Persisted mapping, narrowest scope first.
	mapping, err := m.mappings.Lookup(ctx, normalized, scope)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup mapping: %w", err)
	}
	if mapping != nil {
		subject, err := m.subjects.Get(ctx, mapping.SubjectID)
		if err == nil {
			return subject, true, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("get subject: %w", err)
		}
		// Mapping points at a deleted subject; fall through to matching.
		logger.Debug("Mapping %s references missing subject %s", mapping.ID, mapping.SubjectID)
	}

	subjects, err := m.subjects.List(ctx, scope.GroupID)
	if err != nil {
		return nil, false, fmt.Errorf("list subjects: %w", err)
	}

	// 2. Alias table.
	if canonical, ok := commonAliases[normalized]; ok {
		if subject := findByName(subjects, canonical); subject != nil {
			m.remember(ctx, normalized, subject.ID, scope)
			return subject, true, nil
		}
	}

	// 3. Fuzzy match against the catalog.
	best, bestScore := bestMatch(normalized, subjects)
	if best == nil || bestScore < acceptScore {
		return nil, false, nil
	}

	m.remember(ctx, normalized, best.ID, scope)
	return best, true, nil
}

// SuggestMany ranks candidate subjects for a name.
func (m *SubjectMapper) SuggestMany(ctx context.Context, name string, scope domain.MappingScope, limit int) ([]domain.Suggestion, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	subjects, err := m.subjects.List(ctx, scope.GroupID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(subjects))
	for _, subject := range subjects {
		score := nameScore(normalized, normalizeName(subject.Name))
		if score >= suggestFloor {
			suggestions = append(suggestions, domain.Suggestion{Subject: subject, Score: score})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// Confirm records a user-confirmed mapping.
func (m *SubjectMapper) Confirm(ctx context.Context, name, subjectID string, scope domain.MappingScope) error {
	normalized := normalizeName(name)
	if normalized == "" {
		return fmt.Errorf("confirm mapping: empty name")
	}

	if _, err := m.subjects.Get(ctx, subjectID); err != nil {
		return fmt.Errorf("get subject: %w", err)
	}

	mapping := domain.SubjectMapping{
		ID:           uuid.New().String(),
		InformalName: normalized,
		SubjectID:    subjectID,
		UserID:       scope.UserID,
		GroupID:      scopeGroup(scope),
		Confirmed:    true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.mappings.Save(ctx, mapping); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	return nil
}

// remember writes an auto-derived mapping through to the store. A save
// failure is logged, not surfaced: the resolution itself succeeded.
func (m *SubjectMapper) remember(ctx context.Context, normalized, subjectID string, scope domain.MappingScope) {
	mapping := domain.SubjectMapping{
		ID:           uuid.New().String(),
		InformalName: normalized,
		SubjectID:    subjectID,
		UserID:       scope.UserID,
		GroupID:      scopeGroup(scope),
		Confirmed:    false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := m.mappings.Save(ctx, mapping); err != nil {
		logger.Warn("Failed to persist mapping %q: %v", normalized, err)
	}
}

// scopeGroup returns the group for a new mapping: a user-scoped mapping
// carries no group, a group-scoped one does.
func scopeGroup(scope domain.MappingScope) string {
	if scope.UserID != "" {
		return ""
	}
	return scope.GroupID
}

// normalizeName lowercases a name, strips course prefixes and
// punctuation, and collapses whitespace.
func normalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, prefix := range namePrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = normalized[len(prefix):]
		}
	}

	normalized = nonNameChars.ReplaceAllString(normalized, "")
	return strings.Join(strings.Fields(normalized), " ")
}

// findByName returns the subject whose normalized name matches exactly.
func findByName(subjects []domain.Subject, name string) *domain.Subject {
	for i := range subjects {
		if normalizeName(subjects[i].Name) == name {
			return &subjects[i]
		}
	}
	return nil
}

// bestMatch returns the highest scoring subject for a normalized name.
func bestMatch(normalized string, subjects []domain.Subject) (*domain.Subject, float64) {
	var best *domain.Subject
	var bestScore float64

	for i := range subjects {
		subjectName := normalizeName(subjects[i].Name)
		if normalized == subjectName {
			return &subjects[i], 1.0
		}
		if score := nameScore(normalized, subjectName); score > bestScore {
			bestScore = score
			best = &subjects[i]
		}
	}
	return best, bestScore
}

// nameScore combines edit-distance similarity with a substring floor.
func nameScore(normalized, subjectName string) float64 {
	score := similarity(normalized, subjectName)
	if strings.Contains(subjectName, normalized) && score < containedScore {
		score = containedScore
	}
	return score
}

// similarity is the normalised Levenshtein ratio between two strings,
// 1.0 for identical strings and 0.0 for nothing in common.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
