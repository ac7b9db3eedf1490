// internal/app/features/teammates/handler.go
package teammates

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/astoriahq/studioops/internal/app/codes"
	teammatestore "github.com/astoriahq/studioops/internal/app/store/teammates"
	"github.com/astoriahq/studioops/internal/docstore"
	"go.uber.org/zap"
)

// Handler serves the teammate roster and the employee-code operations.
type Handler struct {
	Store     *teammatestore.Store
	Allocator *codes.Allocator
	Resolver  *codes.Resolver
	Log       *zap.Logger
}

func NewHandler(store *teammatestore.Store, allocator *codes.Allocator, resolver *codes.Resolver, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Allocator: allocator, Resolver: resolver, Log: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

// allocationStatus maps the allocation error taxonomy onto HTTP statuses:
// unresolvable codes to 404, tenant mismatch to 403, a full number space to
// 409, and a blown retry budget to 503.
func allocationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, codes.ErrOrgCodeNotFound):
		return http.StatusNotFound, "org_code_not_found"
	case errors.Is(err, codes.ErrOrgMismatch):
		return http.StatusForbidden, "org_mismatch"
	case errors.Is(err, codes.ErrAllocationExhausted):
		return http.StatusConflict, "allocation_exhausted"
	case errors.Is(err, codes.ErrAllocationFailed):
		return http.StatusServiceUnavailable, "allocation_failed"
	case docstore.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
