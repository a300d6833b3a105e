package db

import (
	"context"
	"database/sql"
	"fmt"

	"vacai/internal/logging"
)

type migration struct {
	table string
	ddl   string
}

var migrations = []migration{
	{
		table: "users",
		ddl: `CREATE TABLE IF NOT EXISTS users (
			uid           VARCHAR(64)  NOT NULL PRIMARY KEY,
			email         VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NULL,
			provider      VARCHAR(32)  NOT NULL DEFAULT 'password',
			created_at    DATETIME     NOT NULL,
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	{
		table: "profiles",
		ddl: `CREATE TABLE IF NOT EXISTS profiles (
			uid          VARCHAR(64)  NOT NULL PRIMARY KEY,
			email        VARCHAR(255) NOT NULL,
			created_at   VARCHAR(32)  NOT NULL,
			display_name VARCHAR(255) NULL,
			preferences  JSON         NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	{
		table: "agent_states",
		ddl: `CREATE TABLE IF NOT EXISTS agent_states (
			user_uid   VARCHAR(64)  NOT NULL,
			agent_name VARCHAR(128) NOT NULL,
			state      JSON         NOT NULL,
			version    BIGINT       NOT NULL,
			updated_at DATETIME     NOT NULL,
			PRIMARY KEY (user_uid, agent_name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
}

// Columns added after a table first shipped. Tables created above already
// have them.
var columnUpgrades = []struct {
	table, column, ddl string
}{
	{"users", "provider", "ALTER TABLE users ADD COLUMN provider VARCHAR(32) NOT NULL DEFAULT 'password' AFTER password_hash"},
	{"agent_states", "version", "ALTER TABLE agent_states ADD COLUMN version BIGINT NOT NULL DEFAULT 0 AFTER state"},
}

// Migrate creates missing tables and adds missing columns to old ones.
// Nothing is ever dropped.
func Migrate(ctx context.Context, conn *sql.DB) error {
	created := map[string]bool{}
	for _, m := range migrations {
		if HasTable(ctx, conn, m.table) {
			continue
		}
		if _, err := conn.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", m.table, err)
		}
		created[m.table] = true
		logging.Info().Str("table", m.table).Msg("table created")
	}

	for _, u := range columnUpgrades {
		if created[u.table] || HasColumn(ctx, conn, u.table, u.column) {
			continue
		}
		if _, err := conn.ExecContext(ctx, u.ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", u.table, u.column, err)
		}
		logging.Info().Str("table", u.table).Str("column", u.column).Msg("column added")
	}
	return nil
}
