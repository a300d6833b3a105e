package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vacai/internal/domain/models"
)

// AgentStateRecord is one persisted shared-state object.
type AgentStateRecord struct {
	UserUID   string
	AgentName string
	State     models.AgentState
	Version   int64
	UpdatedAt time.Time
}

type AgentStateRepository struct {
	DB *sql.DB
}

// Get returns found=false when nothing has been stored for (uid, name).
func (r AgentStateRepository) Get(ctx context.Context, uid, name string) (AgentStateRecord, bool, error) {
	rec := AgentStateRecord{UserUID: uid, AgentName: name}
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT state, version, updated_at
		FROM agent_states
		WHERE user_uid = ? AND agent_name = ?
		LIMIT 1
	`, uid, name).Scan(&raw, &rec.Version, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, false, nil
		}
		return rec, false, fmt.Errorf("query agent state: %w", err)
	}
	if err := json.Unmarshal(raw, &rec.State); err != nil {
		return rec, false, fmt.Errorf("decode agent state: %w", err)
	}
	return rec, true, nil
}

func (r AgentStateRepository) Save(ctx context.Context, rec AgentStateRecord) error {
	raw, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("encode agent state: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO agent_states (user_uid, agent_name, state, version, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			state = VALUES(state),
			version = VALUES(version),
			updated_at = VALUES(updated_at)
	`, rec.UserUID, rec.AgentName, string(raw), rec.Version, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert agent state: %w", err)
	}
	return nil
}
