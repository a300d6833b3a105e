package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	intdb "vacai/internal/db"
	"vacai/internal/domain/models"
)

// ProfileRepository stores one profile document per UID in MySQL; the
// preferences object lives in a JSON column.
type ProfileRepository struct {
	DB *sql.DB
}

// Get returns found=false with no error when the user has no document yet.
func (r ProfileRepository) Get(ctx context.Context, uid string) (models.Profile, bool, error) {
	var (
		p     models.Profile
		name  sql.NullString
		prefs []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT email, created_at, display_name, preferences
		FROM profiles
		WHERE uid = ?
		LIMIT 1
	`, uid).Scan(&p.Email, &p.CreatedAt, &name, &prefs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, false, nil
		}
		return models.Profile{}, false, fmt.Errorf("query profile: %w", err)
	}
	p.DisplayName = name.String
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return models.Profile{}, false, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return p, true, nil
}

// Put writes the full document, replacing any previous one.
func (r ProfileRepository) Put(ctx context.Context, uid string, p models.Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO profiles (uid, email, created_at, display_name, preferences)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			email = VALUES(email),
			created_at = VALUES(created_at),
			display_name = VALUES(display_name),
			preferences = VALUES(preferences)
	`, uid, p.Email, p.CreatedAt, intdb.NullIfEmpty(p.DisplayName), string(prefs))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
