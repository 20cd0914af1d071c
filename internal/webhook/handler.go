package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmnn7/endsig/internal/github"
	"github.com/tmnn7/endsig/internal/signature"
)

// maxPayloadBytes matches GitHub's 25 MB webhook payload cap.
const maxPayloadBytes = 25 << 20

// Processor classifies and signs a single comment.
type Processor interface {
	Process(ctx context.Context, comment github.Comment) (signature.Outcome, string, error)
}

// Handler handles GitHub issue_comment webhooks for one repository.
type Handler struct {
	webhookSecret string
	repo          string
	processor     Processor
	deliveries    *deliveryDeduper
}

// NewHandler creates a new webhook handler
func NewHandler(webhookSecret, repo string, processor Processor) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		repo:          repo,
		processor:     processor,
		deliveries:    newDeliveryDeduper(12 * time.Hour),
	}
}

// Handle verifies the delivery and signs the comment it carries.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		slog.Warn("error reading payload", "err", err)
		http.Error(w, "Error reading payload", http.StatusBadRequest)
		return
	}

	if err := VerifySignature(payload, r.Header.Get("X-Hub-Signature-256"), h.webhookSecret); err != nil {
		slog.Warn("rejected webhook", "err", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	switch eventType {
	case "ping":
		writeText(w, http.StatusOK, "pong")
		return
	case "issue_comment":
	default:
		writeText(w, http.StatusOK, "ignored")
		return
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	if delivery != "" && !h.deliveries.markIfNew(delivery) {
		slog.Info("duplicate delivery", "delivery", delivery)
		writeText(w, http.StatusOK, "duplicate")
		return
	}

	var event IssueCommentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		slog.Warn("error parsing issue_comment payload", "err", err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	if event.Action != "created" && event.Action != "edited" {
		writeText(w, http.StatusOK, "ignored")
		return
	}
	if !strings.EqualFold(event.Repository.FullName, h.repo) {
		slog.Info("ignoring foreign repository", "repo", event.Repository.FullName)
		writeText(w, http.StatusOK, "ignored")
		return
	}

	comment := github.Comment{ID: event.Comment.ID, Body: event.Comment.Body}
	outcome, character, err := h.processor.Process(r.Context(), comment)
	result := Result{CommentID: comment.ID, Character: character, Outcome: outcome.String()}

	if err != nil {
		if delivery != "" {
			h.deliveries.forget(delivery)
		}
		slog.Error("failed to sign comment", "comment", comment.ID, "character", character, "err", err)
		result.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, result)
		return
	}

	slog.Info("processed comment", "comment", comment.ID, "action", event.Action, "character", character, "outcome", outcome)
	writeJSON(w, http.StatusOK, result)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
