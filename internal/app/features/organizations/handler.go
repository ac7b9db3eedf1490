// internal/app/features/organizations/handler.go
package organizations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	orgcodestore "github.com/astoriahq/studioops/internal/app/store/orgcodes"
	organizationstore "github.com/astoriahq/studioops/internal/app/store/organizations"
	"github.com/astoriahq/studioops/internal/app/system/status"
	"github.com/astoriahq/studioops/internal/app/system/timeouts"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves organization provisioning and lookup.
type Handler struct {
	Store *organizationstore.Store
	Codes *orgcodestore.Store
	Log   *zap.Logger
}

func NewHandler(store *organizationstore.Store, codeStore *orgcodestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Codes: codeStore, Log: logger}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

type createRequest struct {
	Name        string `json:"name"`
	OrgCode     string `json:"org_code,omitempty"`
	ContactInfo string `json:"contact_info,omitempty"`
}

// ServeCreate handles POST /organizations.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Store.Create(ctx, models.Organization{
		Name:        req.Name,
		OrgCode:     req.OrgCode,
		ContactInfo: req.ContactInfo,
	})
	if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		h.Log.Error("organization create failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// ServeGet handles GET /organizations/{orgID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orgID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Store.GetByID(ctx, id)
	if docstore.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "organization not found"})
		return
	}
	if err != nil {
		h.Log.Error("organization get failed", zap.String("org_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// ServeList handles GET /organizations (active only).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs, err := h.Store.ListByStatus(ctx, status.Active, 200)
	if err != nil {
		h.Log.Error("organization list failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs, "count": len(orgs)})
}
