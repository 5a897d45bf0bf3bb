package share

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the public token-keyed surface. The routes sit
// outside the authenticated API tree and carry their own per-IP rate limit,
// since tokens are the only guard here.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/q/{token}", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Get("/", h.View)
		r.Post("/approve", h.Approve)
		r.Post("/reject", h.Reject)
	})
}
