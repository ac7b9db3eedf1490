// internal/app/features/teammates/assigncode.go
package teammates

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/app/system/auth"
	"github.com/astoriahq/studioops/internal/app/system/timeouts"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type assignRequest struct {
	OrgCode string `json:"org_code,omitempty"` // explicit override for resolution
	Role    string `json:"role,omitempty"`     // defaults to the teammate's stored role
	Pattern string `json:"pattern,omitempty"`
	Force   bool   `json:"force,omitempty"` // reallocate even if a code is already stamped
}

// ServeAssignCode handles POST /teammates/{teammateID}/employee-code.
//
// The org code is resolved through the discovery chain unless the request
// supplies one; the allocation itself then verifies the resolved code maps
// to the caller's organization before consuming a number.
func (h *Handler) ServeAssignCode(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)
	teammateID := chi.URLParam(r, "teammateID")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tm, err := h.Store.GetByID(ctx, teammateID)
	if docstore.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "teammate not found", Kind: "not_found"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	if tm.OrgID.Hex() != claims.OrgID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "teammate belongs to another organization", Kind: "org_mismatch"})
		return
	}
	if tm.EmployeeCode != "" && !req.Force {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "teammate already has employee code " + tm.EmployeeCode, Kind: "already_assigned"})
		return
	}

	resolution, err := h.Resolver.Resolve(ctx, codes.ResolveInput{
		OrgID:    claims.OrgID,
		Override: req.OrgCode,
		Claims:   claims.Raw,
	})
	if err != nil {
		status, kind := allocationStatus(err)
		writeError(w, status, kind, err)
		return
	}

	role := req.Role
	if role == "" {
		role = tm.Role
	}

	result, err := h.Allocator.Allocate(ctx, codes.Request{
		OrgCode:    resolution.Code,
		Role:       role,
		OrgID:      claims.OrgID,
		TeammateID: teammateID,
		Pattern:    req.Pattern,
	})
	if err != nil {
		h.Log.Error("employee code allocation failed",
			zap.String("teammate_id", teammateID),
			zap.String("org_id", claims.OrgID),
			zap.Error(err))
		status, kind := allocationStatus(err)
		writeError(w, status, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServeResolveOrgCode handles GET /org-code for the caller's organization.
func (h *Handler) ServeResolveOrgCode(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resolution, err := h.Resolver.Resolve(ctx, codes.ResolveInput{
		OrgID:    claims.OrgID,
		Override: r.URL.Query().Get("override"),
		Claims:   claims.Raw,
	})
	if err != nil {
		status, kind := allocationStatus(err)
		writeError(w, status, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, resolution)
}
