package share

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/quotation"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Recorder registers public-link opens.
type Recorder interface {
	Record(ctx context.Context, token string, at time.Time) error
}

// Handler serves the client-facing quotation surface. Everything here is
// keyed by the unguessable access token; there is no session and no org
// context.
type Handler struct {
	logger  *slog.Logger
	service *quotation.Service
	tracker Recorder
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *quotation.Service, tracker Recorder) *Handler {
	return &Handler{logger: logger, service: service, tracker: tracker}
}

// View renders the quotation document for the token holder.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	now := time.Now()

	q, err := h.service.ResolveByToken(r.Context(), token, now)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if q.Status == quotation.StatusExpired {
		http.Error(w, "This quotation has expired. Please contact the sender for an updated offer.", http.StatusGone)
		return
	}

	html, err := h.service.Render(r.Context(), q)
	if err != nil {
		h.logger.Error("render shared quotation failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if h.tracker != nil {
		if err := h.tracker.Record(r.Context(), token, now); err != nil {
			// Tracking is best effort; the client still gets the document.
			h.logger.Warn("record view failed", slog.Any("error", err))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Robots-Tag", "noindex")
	_, _ = w.Write([]byte(html))
}

// Approve records the client's acceptance.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject records the client's refusal.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	token := chi.URLParam(r, "token")

	q, err := h.service.Decide(r.Context(), token, approve, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     q.Status,
		"decided_at": q.DecidedAt,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrTokenNotFound):
		http.Error(w, "Quotation not found", http.StatusNotFound)
	case errors.Is(err, shared.ErrQuotationExpired):
		http.Error(w, "This quotation has expired and can no longer be actioned.", http.StatusGone)
	case errors.Is(err, shared.ErrInvalidTransition):
		http.Error(w, "This quotation has already been decided.", http.StatusConflict)
	default:
		h.logger.Error("shared surface failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
