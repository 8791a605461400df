// Package campaign persists phishing-simulation campaigns and their
// recipients.
package campaign

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a named simulation run targeting a set of recipients.
// Immutable once created; there is no update path.
type Campaign struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Scenario  string    `json:"scenario"`
	StartTime time.Time `json:"start_time"`
	CreatedAt time.Time `json:"created_at"`
}

// Recipient is a training subject targeted by exactly one campaign.
type Recipient struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
}

// NewRecipient is the recipient payload accepted at campaign creation.
type NewRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
