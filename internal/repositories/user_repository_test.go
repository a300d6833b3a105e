package repositories

import (
	"context"
	"testing"
	"time"

	"vacai/internal/domain"
	"vacai/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestUserRepositoryCreateDuplicateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("uid-1", "ana@example.com", "hash", "password", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err = UserRepository{DB: db}.Create(context.Background(), models.User{
		UID:          "uid-1",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		Provider:     "password",
		CreatedAt:    time.Now(),
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM users").WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "password_hash", "provider", "created_at"}).
			AddRow("uid-1", "ana@example.com", "hash", "password", created))
	mock.ExpectQuery("FROM users").WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "password_hash", "provider", "created_at"}))

	repo := UserRepository{DB: db}
	u, err := repo.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.UID != "uid-1" || u.PasswordHash != "hash" || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user %+v", u)
	}

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
