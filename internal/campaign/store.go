package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store provides database operations for campaigns and recipients.
type Store struct {
	db *sql.DB
}

// NewStore creates a new campaign store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a campaign and its recipient batch in one transaction.
// Any invalid recipient aborts the whole create; no partial write survives.
func (s *Store) Create(ctx context.Context, name, scenario string, startTime time.Time, recipients []NewRecipient) (*Campaign, error) {
	c := &Campaign{
		ID:        uuid.New(),
		Name:      name,
		Scenario:  scenario,
		StartTime: startTime,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, scenario, start_time, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Scenario, c.StartTime, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}

	for _, r := range recipients {
		if r.Name == "" || r.Email == "" {
			return nil, fmt.Errorf("invalid recipient data: name and email are required")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recipients (id, campaign_id, name, email) VALUES ($1, $2, $3, $4)`,
			uuid.New(), c.ID, r.Name, r.Email)
		if err != nil {
			return nil, fmt.Errorf("insert recipient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return c, nil
}

// Get retrieves a campaign by ID. Returns (nil, nil) when it does not exist.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	c := &Campaign{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, scenario, start_time, created_at FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Scenario, &c.StartTime, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// Recipients retrieves all recipients of a campaign.
func (s *Store) Recipients(ctx context.Context, campaignID uuid.UUID) ([]Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, campaign_id, name, email FROM recipients WHERE campaign_id = $1 ORDER BY email`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.Name, &r.Email); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}
