package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestApplySkipsAlreadyApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	dir := writeMigrations(t, map[string]string{
		"001_init.sql":    "CREATE TABLE campaigns (id UUID PRIMARY KEY)",
		"002_widgets.sql": "CREATE TABLE widgets (id UUID PRIMARY KEY)",
		"notes.txt":       "ignored, not sql",
	})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"filename"}).AddRow("001_init.sql"))

	// Only 002 is pending; it runs in a transaction and is recorded.
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE widgets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("002_widgets.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, failed, err := apply(db, dir)
	if err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if applied != 1 || failed != 0 {
		t.Errorf("apply() = %d applied, %d failed, want 1/0", applied, failed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestApplyRollsBackFailureAndContinues(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	dir := writeMigrations(t, map[string]string{
		"001_bad.sql":  "CREATE BROKEN",
		"002_good.sql": "CREATE TABLE recipients (id UUID PRIMARY KEY)",
	})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"filename"}))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE BROKEN").WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE recipients").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("002_good.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, failed, err := apply(db, dir)
	if err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if applied != 1 || failed != 1 {
		t.Errorf("apply() = %d applied, %d failed, want 1/1", applied, failed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
