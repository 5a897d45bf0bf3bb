package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-crm/meridian-crm/internal/quotation"
	"github.com/meridian-crm/meridian-crm/internal/share"
	"github.com/meridian-crm/meridian-crm/internal/templates"
	"github.com/meridian-crm/meridian-crm/jobs"
	"github.com/meridian-crm/meridian-crm/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	QuotationHandler *quotation.Handler
	TemplateHandler  *templates.Handler
	ShareHandler     *share.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Meridian defaults. The /api tree
// requires the gateway identity headers; the /q tree is public and token
// keyed.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(IdentityMiddleware(params.Logger))
		params.QuotationHandler.MountRoutes(r)
		params.TemplateHandler.MountRoutes(r)
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				params.JobHandler.MountRoutes(r)
			})
		}
		if params.ReportHandler != nil {
			r.Route("/report", func(r chi.Router) {
				params.ReportHandler.MountRoutes(r)
			})
		}
	})

	params.ShareHandler.MountRoutes(r)

	return r
}
