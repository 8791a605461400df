// Package dispatch turns a campaign definition into delivered,
// individually-tracked lure emails.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/phishsim/internal/campaign"
	"github.com/ignite/phishsim/internal/lure"
	"github.com/ignite/phishsim/internal/mailer"
	"github.com/ignite/phishsim/internal/pkg/logger"
	"github.com/ignite/phishsim/internal/token"
)

// ErrCampaignNotFound is returned when the campaign does not exist.
var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignSource loads campaign definitions. *campaign.Store satisfies it.
type CampaignSource interface {
	Get(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error)
	Recipients(ctx context.Context, campaignID uuid.UUID) ([]campaign.Recipient, error)
}

// Result tallies a dispatch run. A campaign can end mixed: some recipients
// emailed, others not. Re-dispatching re-sends everyone with fresh tokens.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Options configures a Dispatcher.
type Options struct {
	// BaseURL is the public origin tracking links point at,
	// e.g. "http://localhost:8080".
	BaseURL string
	// GenerateTimeout bounds each content-generation call.
	GenerateTimeout time.Duration
	// SendTimeout bounds each delivery call.
	SendTimeout time.Duration
}

// Dispatcher sends one tracked lure email per campaign recipient.
type Dispatcher struct {
	campaigns CampaignSource
	tokens    token.Store
	generator lure.Generator
	sender    mailer.Sender
	opts      Options
}

// New creates a Dispatcher. Zero timeouts get bounded defaults so a stalled
// collaborator costs one recipient, not the whole batch.
func New(campaigns CampaignSource, tokens token.Store, generator lure.Generator, sender mailer.Sender, opts Options) *Dispatcher {
	if opts.GenerateTimeout == 0 {
		opts.GenerateTimeout = 60 * time.Second
	}
	if opts.SendTimeout == 0 {
		opts.SendTimeout = 30 * time.Second
	}
	return &Dispatcher{
		campaigns: campaigns,
		tokens:    tokens,
		generator: generator,
		sender:    sender,
		opts:      opts,
	}
}

// Dispatch processes every recipient of the campaign independently:
// generate lure content, mint a tracking token, rewrite the placeholder
// into the tracking link, deliver. A failure for one recipient is counted
// and the rest continue. Zero recipients is zero work, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, campaignID uuid.UUID) (Result, error) {
	c, err := d.campaigns.Get(ctx, campaignID)
	if err != nil {
		return Result{}, fmt.Errorf("load campaign: %w", err)
	}
	if c == nil {
		return Result{}, ErrCampaignNotFound
	}

	recipients, err := d.campaigns.Recipients(ctx, campaignID)
	if err != nil {
		return Result{}, fmt.Errorf("load recipients: %w", err)
	}
	if len(recipients) == 0 {
		return Result{}, nil
	}

	var res Result
	for _, r := range recipients {
		if err := d.sendOne(ctx, c, r); err != nil {
			logger.Error("lure dispatch failed", "campaign", c.ID, "recipient_email", r.Email, "error", err)
			res.Failed++
			continue
		}
		res.Sent++
	}

	logger.Info("campaign dispatch complete", "campaign", c.ID, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, c *campaign.Campaign, r campaign.Recipient) error {
	genCtx, cancel := context.WithTimeout(ctx, d.opts.GenerateTimeout)
	content, err := d.generator.Generate(genCtx, c.Scenario, r.Name)
	cancel()
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	body := lure.EnsurePlaceholder(content.Body)

	t, err := d.tokens.Issue(ctx, c.ID, r.ID)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	trackingURL := fmt.Sprintf("%s/track/%s", d.opts.BaseURL, t)

	htmlBody := lure.RenderBody(body, trackingURL)

	sendCtx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	err = d.sender.Send(sendCtx, r.Email, content.Subject, htmlBody)
	cancel()
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	return nil
}
