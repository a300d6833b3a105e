package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrateCreatesOnlyMissingTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users"))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("profiles").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("agent_states").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS agent_states").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("users", "provider").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("provider"))

	if err := Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrateAddsMissingColumns(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"users", "profiles", "agent_states"} {
		mock.ExpectQuery("information_schema\\.tables").WithArgs(table).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(table))
	}
	mock.ExpectQuery("information_schema\\.columns").WithArgs("users", "provider").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectExec("ALTER TABLE users ADD COLUMN provider").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("agent_states", "version").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("version"))

	if err := Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHasColumn(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.columns").WithArgs("profiles", "preferences").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("preferences"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("profiles", "theme").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	if !HasColumn(context.Background(), conn, "profiles", "preferences") {
		t.Fatalf("expected preferences column")
	}
	if HasColumn(context.Background(), conn, "profiles", "theme") {
		t.Fatalf("theme column should be missing")
	}
}

func TestNullIfEmpty(t *testing.T) {
	if NullIfEmpty("") != nil {
		t.Fatalf("expected nil for empty string")
	}
	if NullIfEmpty("x") != "x" {
		t.Fatalf("expected value passthrough")
	}
}
