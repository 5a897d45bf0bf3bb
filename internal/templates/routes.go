package templates

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the template registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/templates", h.List)
	r.Post("/templates", h.Create)
	r.Get("/templates/{id}", h.Get)
	r.Put("/templates/{id}", h.Update)
	r.Post("/templates/{id}/default", h.SetDefault)
	r.Post("/templates/{id}/duplicate", h.Duplicate)
	r.Delete("/templates/{id}", h.Delete)
}
