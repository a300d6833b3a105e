package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vacai/internal/logging"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
)

const dbConnectBudget = 30 * time.Second

// OpenDB opens the MySQL pool and waits until it answers a ping, retrying with
// exponential backoff. The caller owns the returned pool and must Close it.
func OpenDB(ctx context.Context, env Env) (*sql.DB, error) {
	db, err := sql.Open("mysql", env.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = dbConnectBudget

	attempt := 0
	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logging.Warn().Err(err).Int("attempt", attempt).Msg("database not ready")
			return err
		}
		return nil
	}

	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	logging.Info().Int("attempts", attempt).Msg("connected to MySQL")
	return db, nil
}
