// internal/app/features/teammates/routes.go
package teammates

import (
	"github.com/astoriahq/studioops/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /teammates. Roster reads are
// open to any signed-in caller; code allocation is restricted to org admins
// because it permanently consumes numbers from the tenant's code space.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/roster", h.ServeRoster)
	r.Get("/{teammateID}", h.ServeGet)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin", "org_admin"))
		r.Post("/", h.ServeCreate)
		r.Post("/{teammateID}/employee-code", h.ServeAssignCode)
		r.Post("/employee-codes/bulk", h.ServeBulkAssign)
	})

	return r
}
