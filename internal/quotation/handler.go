package quotation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// PDFClient is the external converter consuming the composer's HTML.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ViewStats reports public-link engagement for a quotation token.
type ViewStats interface {
	Stats(ctx context.Context, token string) (views int64, firstViewedAt *time.Time, err error)
}

// Handler wires the management-surface quotation endpoints. Authorisation
// happened upstream; the org id arrives through the request context.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	pdf      PDFClient
	views    ViewStats
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFClient, views ViewStats) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		pdf:      pdf,
		views:    views,
		validate: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID := shared.OrgFromContext(r.Context())

	req := ListQuotationsRequest{OrgID: orgID, Limit: 50}
	if v := r.URL.Query().Get("status"); v != "" {
		status := QuotationStatus(v)
		req.Status = &status
	}
	if v := r.URL.Query().Get("contact_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.ContactID = &id
		}
	}
	req.DateFrom = parseDate(r.URL.Query().Get("date_from"))
	req.DateTo = parseDate(r.URL.Query().Get("date_to"))
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			req.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			req.Offset = n
		}
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list quotations failed", slog.Any("error", err))
		http.Error(w, "Failed to load quotations", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"quotations": list, "total": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), shared.OrgFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.Create(r.Context(), shared.OrgFromContext(r.Context()), req, shared.UserFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create quotation failed", slog.Any("error", err))
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateQuotationRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.service.Update(r.Context(), shared.OrgFromContext(r.Context()), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Send(r.Context(), shared.OrgFromContext(r.Context()), id, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Reopen(r.Context(), shared.OrgFromContext(r.Context()), id, time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

// Preview returns the composed HTML document as the browser frame shows it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	html, err := h.service.RenderByID(r.Context(), shared.OrgFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// PDF converts the composed document through the external PDF collaborator.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		http.Error(w, "PDF export not configured", http.StatusServiceUnavailable)
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	orgID := shared.OrgFromContext(r.Context())
	q, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	html, err := h.service.Render(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("pdf conversion failed", slog.Any("error", err))
		http.Error(w, "PDF conversion failed", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+q.Number+`.pdf"`)
	_, _ = w.Write(pdf)
}

// Engagement reports whether and how often the public link was opened.
func (h *Handler) Engagement(w http.ResponseWriter, r *http.Request) {
	if h.views == nil {
		http.Error(w, "View tracking not configured", http.StatusServiceUnavailable)
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), shared.OrgFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views, firstViewedAt, err := h.views.Stats(r.Context(), q.PublicAccessToken)
	if err != nil {
		h.logger.Error("load view stats failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"views":           views,
		"first_viewed_at": firstViewedAt,
	})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid quotation ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, "Quotation not found", http.StatusNotFound)
	case errors.Is(err, shared.ErrTemplateNotFound):
		http.Error(w, "Template not found", http.StatusNotFound)
	case errors.Is(err, shared.ErrInvalidLineItem):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, shared.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
