// internal/app/features/organizations/provisioncode.go
package organizations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	orgcodestore "github.com/astoriahq/studioops/internal/app/store/orgcodes"
	"github.com/astoriahq/studioops/internal/app/system/timeouts"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type provisionRequest struct {
	Code string `json:"code"`
}

// ServeProvisionCode handles POST /organizations/{orgID}/org-code: it pins
// the tenant's canonical short code so allocation never has to fall back to
// the resolver's discovery chain.
func (h *Handler) ServeProvisionCode(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The organization must exist before a code can point at it.
	if _, err := h.Store.GetByID(ctx, orgID); err != nil {
		if docstore.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "organization not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	entry, err := h.Codes.Provision(ctx, req.Code, orgID)
	switch {
	case errors.Is(err, orgcodestore.ErrEmptyCode):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, orgcodestore.ErrCodeTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("org code provisioning failed",
			zap.String("org_id", orgID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.Log.Info("org code provisioned",
		zap.String("org_id", orgID), zap.String("code", entry.Code))
	writeJSON(w, http.StatusCreated, entry)
}

// ServeGetCode handles GET /organizations/{orgID}/org-code: the reverse of
// provisioning, it reports the canonical short code currently pointing at the
// organization.
func (h *Handler) ServeGetCode(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	entry, err := h.Codes.GetByOrg(ctx, orgID)
	if docstore.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no org code provisioned for organization"})
		return
	}
	if err != nil {
		h.Log.Error("org code lookup failed", zap.String("org_id", orgID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
