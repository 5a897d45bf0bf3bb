package quotation

import "github.com/go-chi/chi/v5"

// MountRoutes registers the management quotation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/quotations", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Post("/send", h.Send)
			r.Post("/reopen", h.Reopen)
			r.Get("/preview", h.Preview)
			r.Get("/pdf", h.PDF)
			r.Get("/engagement", h.Engagement)
		})
	})
}
