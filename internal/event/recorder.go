// Package event records click and credential-submission events against
// campaign recipients, at most once per (campaign, recipient, kind).
package event

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind is the type of a tracking event.
type Kind string

const (
	// KindClick records that the recipient followed the lure link.
	KindClick Kind = "click"
	// KindSubmission records that the recipient submitted credentials on
	// the simulated login page.
	KindSubmission Kind = "submission"
)

// Event is a recorded click or submission, joined with recipient identity
// for display.
type Event struct {
	ID             uuid.UUID `json:"event_id"`
	CampaignID     uuid.UUID `json:"campaign_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	RecipientName  string    `json:"name"`
	RecipientEmail string    `json:"email"`
	Kind           Kind      `json:"event_type"`
	Timestamp      time.Time `json:"event_timestamp"`
	IPAddress      string    `json:"ip_address"`
}

// Report aggregates a campaign's outcome for the admin dashboard.
// Rates are percentages rounded to two decimals; a campaign with zero
// recipients reports zero rates.
type Report struct {
	TotalRecipients  int     `json:"total_recipients"`
	TotalClicks      int     `json:"total_clicks"`
	TotalSubmissions int     `json:"total_submissions"`
	ClickRate        float64 `json:"click_rate"`
	SubmissionRate   float64 `json:"submission_rate"`
}

// Recorder logs tracking events against the relational store. Uniqueness is
// enforced by the store's constraint, not in-process locking, so multiple
// server instances sharing one database stay consistent.
type Recorder struct {
	db *sql.DB
}

// NewRecorder creates a new event recorder.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// RecordIfAbsent inserts an event unless one already exists for the
// (campaign, recipient, kind) triple. Returns true when a row was written,
// false when the event was already present. One statement; the unique index
// on the triple makes the check-and-insert atomic under concurrency.
func (r *Recorder) RecordIfAbsent(ctx context.Context, campaignID, recipientID uuid.UUID, kind Kind, sourceIP string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tracking_events (id, campaign_id, recipient_id, event_type, event_timestamp, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (campaign_id, recipient_id, event_type) DO NOTHING`,
		uuid.New(), campaignID, recipientID, string(kind), time.Now().UTC(), sourceIP)
	if err != nil {
		return false, fmt.Errorf("record %s event: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record %s event: rows affected: %w", kind, err)
	}
	return n == 1, nil
}

// ListByCampaign returns a campaign's events newest first, each joined with
// the recipient's name and email.
func (r *Recorder) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT te.id, te.campaign_id, te.recipient_id, rc.name, rc.email, te.event_type, te.event_timestamp, te.ip_address
		 FROM tracking_events te
		 JOIN recipients rc ON te.recipient_id = rc.id
		 WHERE te.campaign_id = $1
		 ORDER BY te.event_timestamp DESC`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.RecipientID, &e.RecipientName, &e.RecipientEmail, &kind, &e.Timestamp, &e.IPAddress); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CampaignReport computes recipient count, distinct clickers, distinct
// submitters and the two rates for a campaign.
func (r *Recorder) CampaignReport(ctx context.Context, campaignID uuid.UUID) (*Report, error) {
	rep := &Report{}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipients WHERE campaign_id = $1`, campaignID).
		Scan(&rep.TotalRecipients)
	if err != nil {
		return nil, fmt.Errorf("count recipients: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT recipient_id) FROM tracking_events WHERE campaign_id = $1 AND event_type = 'click'`, campaignID).
		Scan(&rep.TotalClicks)
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT recipient_id) FROM tracking_events WHERE campaign_id = $1 AND event_type = 'submission'`, campaignID).
		Scan(&rep.TotalSubmissions)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	if rep.TotalRecipients > 0 {
		rep.ClickRate = roundRate(float64(rep.TotalClicks) / float64(rep.TotalRecipients) * 100)
		rep.SubmissionRate = roundRate(float64(rep.TotalSubmissions) / float64(rep.TotalRecipients) * 100)
	}
	return rep, nil
}

func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}
