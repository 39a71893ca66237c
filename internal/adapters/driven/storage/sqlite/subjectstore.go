package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// subjectStore implements driven.SubjectStore.
type subjectStore struct {
	store *Store
}

var _ driven.SubjectStore = (*subjectStore)(nil)

// Get retrieves a subject by id.
func (s *subjectStore) Get(ctx context.Context, id string) (*domain.Subject, error) {
	var subject domain.Subject
	err := s.store.db.QueryRowContext(ctx,
		`SELECT id, name, group_id FROM subjects WHERE id = ?`,
		id).Scan(&subject.ID, &subject.Name, &subject.GroupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying subject: %w", err)
	}
	return &subject, nil
}

// List returns the subjects visible to a group: its own plus global ones.
func (s *subjectStore) List(ctx context.Context, groupID string) ([]domain.Subject, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT id, name, group_id FROM subjects
		 WHERE group_id = ? OR group_id = ''
		 ORDER BY name`, groupID)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer rows.Close()

	var subjects []domain.Subject //nolint:prealloc // size unknown from query
	for rows.Next() {
		var subject domain.Subject
		if err := rows.Scan(&subject.ID, &subject.Name, &subject.GroupID); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}
	return subjects, nil
}

// Save stores or updates a subject.
func (s *subjectStore) Save(ctx context.Context, subject domain.Subject) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO subjects (id, name, group_id)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			group_id = excluded.group_id
	`, subject.ID, subject.Name, subject.GroupID)
	if err != nil {
		return fmt.Errorf("saving subject: %w", err)
	}
	return nil
}
