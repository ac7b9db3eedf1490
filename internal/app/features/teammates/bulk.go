// internal/app/features/teammates/bulk.go
package teammates

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/app/system/auth"
	"github.com/astoriahq/studioops/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bulkRosterLimit = 500

type bulkRequest struct {
	OrgCode string `json:"org_code,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Force   bool   `json:"force,omitempty"`
}

type bulkItem struct {
	TeammateID string `json:"teammate_id"`
	Code       string `json:"code,omitempty"`
	Number     int64  `json:"number,omitempty"`
	Attempts   int    `json:"attempts,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

type bulkResponse struct {
	JobID    string     `json:"job_id"`
	OrgCode  string     `json:"org_code"`
	Assigned int        `json:"assigned"`
	Skipped  int        `json:"skipped"`
	Failed   int        `json:"failed"`
	Items    []bulkItem `json:"items"`
}

// ServeBulkAssign handles POST /teammates/employee-codes/bulk.
//
// The org code is resolved once up front — resolution is the precondition
// for every allocation in the batch, so an unresolvable code fails the
// whole request before any number is consumed. Teammates that already carry
// a code are skipped unless force is set; individual allocation failures
// are reported per item and do not stop the batch.
func (h *Handler) ServeBulkAssign(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

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

	roster, err := h.Store.ListByOrg(ctx, claims.OrgID, bulkRosterLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	resp := bulkResponse{JobID: uuid.NewString(), OrgCode: resolution.Code}
	for _, tm := range roster {
		item := bulkItem{TeammateID: tm.ID.Hex()}
		if tm.EmployeeCode != "" && !req.Force {
			item.Skipped = true
			item.Code = tm.EmployeeCode
			resp.Skipped++
			resp.Items = append(resp.Items, item)
			continue
		}

		result, err := h.Allocator.Allocate(ctx, codes.Request{
			OrgCode:    resolution.Code,
			Role:       tm.Role,
			OrgID:      claims.OrgID,
			TeammateID: tm.ID.Hex(),
			Pattern:    req.Pattern,
		})
		if err != nil {
			_, kind := allocationStatus(err)
			item.Error = err.Error()
			item.ErrorKind = kind
			resp.Failed++
			resp.Items = append(resp.Items, item)
			continue
		}
		item.Code = result.Code
		item.Number = result.Number
		item.Attempts = result.Attempts
		resp.Assigned++
		resp.Items = append(resp.Items, item)
	}

	h.Log.Info("bulk employee-code assignment finished",
		zap.String("job_id", resp.JobID),
		zap.String("org_id", claims.OrgID),
		zap.String("org_code", resp.OrgCode),
		zap.Int("assigned", resp.Assigned),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed))
	writeJSON(w, http.StatusOK, resp)
}
