// internal/app/features/teammates/teammates.go
package teammates

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/astoriahq/studioops/internal/app/system/auth"
	"github.com/astoriahq/studioops/internal/app/system/timeouts"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultListLimit = 200

type createRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeCreate handles POST /teammates.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)
	orgID, err := primitive.ObjectIDFromHex(claims.OrgID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_org_id", err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Name == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name and role are required", Kind: "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tm, err := h.Store.Create(ctx, models.Teammate{
		OrgID: orgID,
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		h.Log.Error("teammate create failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusCreated, tm)
}

// ServeGet handles GET /teammates/{teammateID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "teammateID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tm, err := h.Store.GetByID(ctx, id)
	if docstore.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "teammate not found", Kind: "not_found"})
		return
	}
	if err != nil {
		h.Log.Error("teammate get failed", zap.String("teammate_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}

// ServeList handles GET /teammates for the caller's organization.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Store.ListByOrg(ctx, claims.OrgID, defaultListLimit)
	if err != nil {
		h.Log.Error("teammate list failed", zap.String("org_id", claims.OrgID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"teammates": list, "count": len(list)})
}

// ServeRoster handles GET /teammates/roster: the denormalized team-member
// records for the caller's organization, employee codes included.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	roster, err := h.Store.ListRoster(ctx, claims.OrgID, defaultListLimit)
	if err != nil {
		h.Log.Error("roster list failed", zap.String("org_id", claims.OrgID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roster": roster, "count": len(roster)})
}
