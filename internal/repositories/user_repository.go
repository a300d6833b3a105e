package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vacai/internal/domain"
	"vacai/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) Create(ctx context.Context, u models.User) error {
	var hash any
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (uid, email, password_hash, provider, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.UID, u.Email, hash, u.Provider, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r UserRepository) GetByUID(ctx context.Context, uid string) (models.User, error) {
	return r.getOne(ctx, "uid", uid)
}

func (r UserRepository) getOne(ctx context.Context, column, value string) (models.User, error) {
	var (
		u    models.User
		hash sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT uid, email, password_hash, provider, created_at
		FROM users
		WHERE `+column+` = ?
		LIMIT 1
	`, value).Scan(&u.UID, &u.Email, &hash, &u.Provider, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, fmt.Errorf("query user: %w", err)
	}
	u.PasswordHash = hash.String
	return u, nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
