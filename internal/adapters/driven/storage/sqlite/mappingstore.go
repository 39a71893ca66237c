package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/ports/driven"
)

// mappingStore implements driven.MappingStore.
type mappingStore struct {
	store *Store
}

var _ driven.MappingStore = (*mappingStore)(nil)

const mappingColumns = `id, informal_name, subject_id, user_id, group_id, confirmed, created_at`

// Lookup resolves a normalized informal name, checking the narrowest
// scope first: user, then group, then global.
func (s *mappingStore) Lookup(ctx context.Context, normalized string, scope domain.MappingScope) (*domain.SubjectMapping, error) {
	var scopes []struct{ userID, groupID string }
	if scope.UserID != "" {
		scopes = append(scopes, struct{ userID, groupID string }{scope.UserID, ""})
	}
	if scope.GroupID != "" {
		scopes = append(scopes, struct{ userID, groupID string }{"", scope.GroupID})
	}
	scopes = append(scopes, struct{ userID, groupID string }{"", ""})

	for _, sc := range scopes {
		row := s.store.db.QueryRowContext(ctx,
			`SELECT `+mappingColumns+` FROM subject_mappings
			 WHERE informal_name = ? AND user_id = ? AND group_id = ?`,
			normalized, sc.userID, sc.groupID)

		mapping, err := scanMapping(row)
		if err == domain.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		return mapping, nil
	}

	return nil, domain.ErrNotFound
}

// Save stores a mapping. A confirmed mapping is never replaced by an
// auto-derived one for the same scoped name.
func (s *mappingStore) Save(ctx context.Context, mapping domain.SubjectMapping) error {
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO subject_mappings (`+mappingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(informal_name, user_id, group_id) DO UPDATE SET
			subject_id = excluded.subject_id,
			confirmed = excluded.confirmed
		WHERE subject_mappings.confirmed = 0 OR excluded.confirmed = 1
	`, mapping.ID, mapping.InformalName, mapping.SubjectID, mapping.UserID,
		mapping.GroupID, mapping.Confirmed, mapping.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}
	return nil
}

// Delete removes a mapping by id.
func (s *mappingStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx,
		`DELETE FROM subject_mappings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMapping(row interface{ Scan(...any) error }) (*domain.SubjectMapping, error) {
	var mapping domain.SubjectMapping
	err := row.Scan(&mapping.ID, &mapping.InformalName, &mapping.SubjectID,
		&mapping.UserID, &mapping.GroupID, &mapping.Confirmed, &mapping.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning mapping: %w", err)
	}
	return &mapping, nil
}
