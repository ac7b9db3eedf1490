// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/astoriahq/studioops/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /organizations.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{orgID}", h.ServeGet)
	r.Get("/{orgID}/org-code", h.ServeGetCode)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin"))
		r.Post("/", h.ServeCreate)
		r.Post("/{orgID}/org-code", h.ServeProvisionCode)
	})

	return r
}
