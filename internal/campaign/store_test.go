package campaign

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestCreateCampaignWithRecipients(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaigns").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO recipients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO recipients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, err := store.Create(context.Background(), "Q3 awareness", "password reset", time.Now(),
		[]NewRecipient{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bob", Email: "bob@example.com"},
		})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("Create() returned nil campaign ID")
	}
	if c.Name != "Q3 awareness" {
		t.Errorf("Name = %q, want %q", c.Name, "Q3 awareness")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateRollsBackOnInvalidRecipient(t *testing.T) {
	store, mock := setupStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO campaigns").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO recipients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second recipient is invalid; the deferred rollback fires instead of commit.
	mock.ExpectRollback()

	_, err := store.Create(context.Background(), "bad batch", "", time.Now(),
		[]NewRecipient{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "", Email: "bob@example.com"},
		})
	if err == nil {
		t.Fatal("Create() error = nil, want invalid recipient error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetCampaign(t *testing.T) {
	store, mock := setupStore(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, name, scenario, start_time, created_at FROM campaigns").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "scenario", "start_time", "created_at"}).
			AddRow(id, "Q3 awareness", "password reset", now, now))

	c, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if c == nil {
		t.Fatal("Get() returned nil for existing campaign")
	}
	if c.ID != id || c.Scenario != "password reset" {
		t.Errorf("Get() = %+v", c)
	}
}

func TestGetCampaignMissing(t *testing.T) {
	store, mock := setupStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, name, scenario, start_time, created_at FROM campaigns").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "scenario", "start_time", "created_at"}))

	c, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if c != nil {
		t.Errorf("Get() = %+v, want nil for missing campaign", c)
	}
}

func TestRecipients(t *testing.T) {
	store, mock := setupStore(t)
	campaignID := uuid.New()

	mock.ExpectQuery("SELECT id, campaign_id, name, email FROM recipients").
		WithArgs(campaignID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "campaign_id", "name", "email"}).
			AddRow(uuid.New(), campaignID, "Alice", "alice@example.com").
			AddRow(uuid.New(), campaignID, "Bob", "bob@example.com"))

	recipients, err := store.Recipients(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("Recipients() error: %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("Recipients() returned %d, want 2", len(recipients))
	}
	if recipients[0].Name != "Alice" || recipients[1].Email != "bob@example.com" {
		t.Errorf("Recipients() = %+v", recipients)
	}
}
