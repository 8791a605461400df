// Package api exposes the admin and public HTTP surface: campaign CRUD and
// dispatch for administrators, tracking and submission pages for recipients.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/phishsim/internal/campaign"
	"github.com/ignite/phishsim/internal/dispatch"
	"github.com/ignite/phishsim/internal/event"
	"github.com/ignite/phishsim/internal/lure"
	"github.com/ignite/phishsim/internal/pkg/logger"
	"github.com/ignite/phishsim/internal/token"
)

// startTimeLayout is the accepted campaign start-time format.
const startTimeLayout = "2006-01-02 15:04:05"

// Handlers contains all HTTP handlers.
type Handlers struct {
	campaigns  *campaign.Store
	recorder   *event.Recorder
	tokens     token.Store
	dispatcher *dispatch.Dispatcher
	generator  lure.Generator
	pages      *PageRenderer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(campaigns *campaign.Store, recorder *event.Recorder, tokens token.Store, dispatcher *dispatch.Dispatcher, generator lure.Generator) *Handlers {
	return &Handlers{
		campaigns:  campaigns,
		recorder:   recorder,
		tokens:     tokens,
		dispatcher: dispatcher,
		generator:  generator,
		pages:      NewPageRenderer(),
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handlers) respondPage(w http.ResponseWriter, status int, page string, bindings map[string]interface{}) {
	html, err := h.pages.Render(page, bindings)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(html))
}

// Index confirms the service is running.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("AI Phishing Simulation Platform is running."))
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// createCampaignRequest is the campaign-creation payload.
type createCampaignRequest struct {
	Name       string                  `json:"name"`
	Scenario   string                  `json:"scenario"`
	StartTime  string                  `json:"start_time"`
	Recipients []campaign.NewRecipient `json:"recipients"`
}

// CreateCampaign creates a campaign and its recipients in one transaction.
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Name == "" || req.StartTime == "" || len(req.Recipients) == 0 {
		respondError(w, http.StatusBadRequest, "missing required fields: name, start_time, recipients")
		return
	}

	startTime, err := time.Parse(startTimeLayout, req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start_time format, use YYYY-MM-DD HH:MM:SS")
		return
	}

	for _, rec := range req.Recipients {
		if rec.Name == "" || rec.Email == "" {
			respondError(w, http.StatusBadRequest, "invalid recipient data: name and email are required")
			return
		}
	}

	c, err := h.campaigns.Create(r.Context(), req.Name, req.Scenario, startTime, req.Recipients)
	if err != nil {
		log.Printf("[API] create campaign failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create campaign")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Campaign created",
		"campaign_id": c.ID,
	})
}

// campaignDetails is the GET /campaigns/{id} response.
type campaignDetails struct {
	*campaign.Campaign
	Recipients []campaign.Recipient `json:"recipients"`
	Events     []event.Event        `json:"events"`
}

// GetCampaign returns a campaign with its recipients and events.
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		log.Printf("[API] get campaign %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch campaign details")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}

	recipients, err := h.campaigns.Recipients(r.Context(), id)
	if err != nil {
		log.Printf("[API] recipients for %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch campaign details")
		return
	}

	events, err := h.recorder.ListByCampaign(r.Context(), id)
	if err != nil {
		log.Printf("[API] events for %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch campaign details")
		return
	}

	respondJSON(w, http.StatusOK, campaignDetails{
		Campaign:   c,
		Recipients: recipients,
		Events:     events,
	})
}

// SendCampaign dispatches the campaign's lure emails.
func (h *Handlers) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), id)
	if errors.Is(err, dispatch.ErrCampaignNotFound) {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}
	if err != nil {
		log.Printf("[API] dispatch %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to send campaign emails")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Campaign email processing complete. Sent: %d, Failed: %d", res.Sent, res.Failed),
		"sent":    res.Sent,
		"failed":  res.Failed,
	})
}

// TrackClick resolves a tracking token, records the click once, and renders
// the simulated login page. An unknown token is a hard 404; a storage
// failure while recording still renders the page so the simulation is not
// revealed to the training subject.
func (h *Handlers) TrackClick(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	b, err := h.tokens.Resolve(r.Context(), tok)
	if errors.Is(err, token.ErrNotFound) {
		h.respondPage(w, http.StatusNotFound, pageNotFound, nil)
		return
	}
	if err != nil {
		logger.Error("token resolve failed", "error", err)
		h.respondPage(w, http.StatusNotFound, pageNotFound, nil)
		return
	}

	inserted, err := h.recorder.RecordIfAbsent(r.Context(), b.CampaignID, b.RecipientID, event.KindClick, realIP(r))
	if err != nil {
		logger.Error("click record failed", "campaign", b.CampaignID, "recipient", b.RecipientID, "error", err)
	} else if inserted {
		logger.Info("click recorded", "campaign", b.CampaignID, "recipient", b.RecipientID)
	}

	h.respondPage(w, http.StatusOK, pageFakeLogin, map[string]interface{}{
		"tracking_token": tok,
	})
}

// SubmitCredentials records a submission once and renders the awareness
// feedback page. Submitted form values are deliberately discarded.
func (h *Handlers) SubmitCredentials(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	b, err := h.tokens.Resolve(r.Context(), tok)
	if errors.Is(err, token.ErrNotFound) {
		h.respondPage(w, http.StatusNotFound, pageNotFound, nil)
		return
	}
	if err != nil {
		logger.Error("token resolve failed", "error", err)
		h.respondPage(w, http.StatusNotFound, pageNotFound, nil)
		return
	}

	inserted, err := h.recorder.RecordIfAbsent(r.Context(), b.CampaignID, b.RecipientID, event.KindSubmission, realIP(r))
	if err != nil {
		logger.Error("submission record failed", "campaign", b.CampaignID, "recipient", b.RecipientID, "error", err)
	} else if inserted {
		logger.Info("submission recorded", "campaign", b.CampaignID, "recipient", b.RecipientID)
	}

	tipsHTML := h.renderTips(r)

	h.respondPage(w, http.StatusOK, pageFeedback, map[string]interface{}{
		"tips_html": tipsHTML,
	})
}

// renderTips fetches awareness tips from the generator and converts them to
// HTML, falling back to a static reminder on any failure.
func (h *Handlers) renderTips(r *http.Request) string {
	tips, err := h.generator.Tips(r.Context())
	if err != nil || strings.TrimSpace(tips) == "" {
		logger.Error("tips generation failed", "error", err)
		return "<p>Could not load phishing tips at this time. Remember to always be cautious with emails " +
			"asking for personal information or containing suspicious links.</p>"
	}
	return lure.MarkupToHTML(tips)
}

// CampaignReport returns the aggregate figures as JSON.
func (h *Handlers) CampaignReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		log.Printf("[API] report %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch report")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "campaign not found")
		return
	}

	rep, err := h.recorder.CampaignReport(r.Context(), id)
	if err != nil {
		log.Printf("[API] report %s failed: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch report")
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// AdminDashboard renders the report as an HTML page.
func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rep, err := h.recorder.CampaignReport(r.Context(), id)
	if err != nil {
		log.Printf("[API] dashboard %s failed: %v", id, err)
		h.respondPage(w, http.StatusInternalServerError, pageError, map[string]interface{}{
			"error_message": "Failed to fetch campaign report.",
		})
		return
	}

	h.respondPage(w, http.StatusOK, pageDashboard, map[string]interface{}{
		"campaign_id":       id.String(),
		"total_recipients":  rep.TotalRecipients,
		"total_clicks":      rep.TotalClicks,
		"total_submissions": rep.TotalSubmissions,
		"click_rate":        fmt.Sprintf("%.2f", rep.ClickRate),
		"submission_rate":   fmt.Sprintf("%.2f", rep.SubmissionRate),
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid campaign id")
		return uuid.Nil, false
	}
	return id, true
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
