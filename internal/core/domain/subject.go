package domain

import "time"

// Subject is one category from the bounded taxonomy catalog.
type Subject struct {
	// ID is the unique identifier for the subject.
	ID string

	// Name is the canonical subject name (e.g. "Physik").
	Name string

	// GroupID scopes the subject to a school class. Empty means the
	// subject is available globally.
	GroupID string
}

// MappingScope narrows a subject-mapping lookup. Resolution consults
// the user scope first, then the group scope, then global; a narrower
// mapping always takes precedence over a broader one.
type MappingScope struct {
	// UserID is the individual scope. Empty skips the user lookup.
	UserID string

	// GroupID is the group (class) scope. Empty skips the group lookup.
	GroupID string
}

// SubjectMapping records a resolved informal-name to subject
// association. Uniqueness holds per (normalized name, scope). A
// user-confirmed mapping is never replaced by the mapper's own logic;
// auto-derived mappings may be.
type SubjectMapping struct {
	// ID is the unique identifier for the mapping.
	ID string

	// InformalName is the normalized informal name.
	InformalName string

	// SubjectID references the resolved subject.
	SubjectID string

	// UserID is the user scope, empty for group or global mappings.
	UserID string

	// GroupID is the group scope, empty for user or global mappings.
	GroupID string

	// Confirmed is true when a human confirmed the mapping.
	Confirmed bool

	// CreatedAt is when the mapping was first recorded.
	CreatedAt time.Time
}

// Suggestion pairs a candidate subject with its similarity score,
// produced for presentation to a human who will confirm.
type Suggestion struct {
	Subject Subject
	Score   float64
}
