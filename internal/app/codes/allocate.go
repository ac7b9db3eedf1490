// internal/app/codes/allocate.go
package codes

import (
	"context"
	"fmt"
	"time"

	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/domain/models"
)

// Collections touched by the allocation core.
const (
	ColOrganizations = "organizations"
	ColOrgCodes      = "org_codes"
	ColRoleCounters  = "role_counters"
	ColEmployeeCodes = "employee_codes"
	ColTeammates     = "teammates"
	ColTeamMembers   = "team_members"
)

// maxCandidateScan bounds the free-number search inside one transaction.
// Hitting it means the number space around the counter is pathologically
// crowded; the fix is a wider pattern, not more scanning.
const maxCandidateScan = 128

// Request describes one employee-code allocation.
type Request struct {
	// OrgCode is the tenant's short code (e.g. "ASTR"). It must map to
	// OrgID in the canonical org_codes collection.
	OrgCode string

	// Role is the job-function tag. It is normalized before the
	// transaction starts so the counter key and the formatted code agree.
	Role string

	// OrgID is the tenant the caller is acting for. Allocation fails with
	// ErrOrgMismatch if OrgCode maps elsewhere.
	OrgID string

	// TeammateID, when set, has the allocated code merged onto the
	// teammate profile and the team-roster record inside the transaction.
	TeammateID string

	// Pattern overrides DefaultPattern when non-empty.
	Pattern string
}

// Result is what a successful allocation returns. It is never persisted.
type Result struct {
	Code     string        `json:"code"`
	OrgID    string        `json:"org_id"`
	Role     string        `json:"role"`
	Number   int64         `json:"number"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed_ms"`
}

// allocateOnce runs a single allocation transaction: verify the org code,
// scan forward from the role counter for a free number, and commit the
// uniqueness-index entry, the advanced counter, and the denormalized copies
// as one atomic unit.
func allocateOnce(ctx context.Context, store docstore.Store, req Request) (*Result, error) {
	var res *Result
	err := store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		entry, err := verifyOrgCode(ctx, tx, req.OrgCode, req.OrgID)
		if err != nil {
			return err
		}

		candidate, err := counterStart(ctx, tx, entry.OrgID, req.Role)
		if err != nil {
			return err
		}

		for scanned := 0; scanned < maxCandidateScan; scanned++ {
			code := Format(req.Pattern, req.OrgCode, req.Role, candidate)

			doc, err := tx.Get(ctx, ColEmployeeCodes, code)
			if docstore.IsNotFound(err) {
				if err := commitCandidate(ctx, tx, req, entry.OrgID, code, candidate); err != nil {
					return err
				}
				res = &Result{Code: code, OrgID: entry.OrgID, Role: req.Role, Number: candidate}
				return nil
			}
			if err != nil {
				return err
			}

			// Taken. Skip past the holder's recorded number so two
			// separately seeded counters racing into the same region
			// converge instead of colliding one number at a time.
			var taken models.CodeEntry
			if err := doc.DataTo(&taken); err != nil {
				return fmt.Errorf("decode code entry %q: %w", code, err)
			}
			next := candidate + 1
			if taken.Number+1 > next {
				next = taken.Number + 1
			}
			candidate = next
		}
		return fmt.Errorf("%w (scanned %d candidates for %s/%s)",
			ErrAllocationExhausted, maxCandidateScan, req.OrgCode, req.Role)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// verifyOrgCode loads the canonical mapping for code and checks tenancy.
func verifyOrgCode(ctx context.Context, tx docstore.Tx, code, wantOrgID string) (*models.OrgCodeEntry, error) {
	doc, err := tx.Get(ctx, ColOrgCodes, code)
	if docstore.IsNotFound(err) {
		return nil, &NotFoundError{OrgID: wantOrgID, Guidance: fmt.Sprintf("org code %q has no canonical mapping", code)}
	}
	if err != nil {
		return nil, err
	}
	var entry models.OrgCodeEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("decode org code %q: %w", code, err)
	}
	entry.Code = code
	if entry.OrgID != wantOrgID {
		return nil, &MismatchError{Code: code, WantOrgID: wantOrgID, MappedOrgID: entry.OrgID}
	}
	return &entry, nil
}

// counterStart reads the (org, role) counter and returns the first candidate
// number, starting at 1 when the counter is absent or corrupt-low.
func counterStart(ctx context.Context, tx docstore.Tx, orgID, role string) (int64, error) {
	doc, err := tx.Get(ctx, ColRoleCounters, models.RoleCounterID(orgID, role))
	if docstore.IsNotFound(err) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	var counter models.RoleCounter
	if err := doc.DataTo(&counter); err != nil {
		return 0, fmt.Errorf("decode role counter %s/%s: %w", orgID, role, err)
	}
	if counter.Next < 1 {
		return 1, nil
	}
	return counter.Next, nil
}

// commitCandidate stages every write for a won candidate: the append-only
// uniqueness entry, the advanced counter, and (when a teammate is named)
// the denormalized copies on the profile and roster record.
func commitCandidate(ctx context.Context, tx docstore.Tx, req Request, orgID, code string, number int64) error {
	now := time.Now().UTC()

	entry := models.CodeEntry{
		Code:       code,
		OrgID:      orgID,
		Role:       req.Role,
		Number:     number,
		TeammateID: req.TeammateID,
		CreatedAt:  now,
	}
	if err := tx.Set(ctx, ColEmployeeCodes, code, entry, false); err != nil {
		return err
	}

	counter := models.RoleCounter{
		ID:        models.RoleCounterID(orgID, req.Role),
		OrgID:     orgID,
		Role:      req.Role,
		Next:      number + 1,
		UpdatedAt: now,
	}
	if err := tx.Set(ctx, ColRoleCounters, counter.ID, counter, true); err != nil {
		return err
	}

	if req.TeammateID == "" {
		return nil
	}
	stamp := map[string]any{"employee_code": code, "updated_at": now}
	if err := tx.Set(ctx, ColTeammates, req.TeammateID, stamp, true); err != nil {
		return err
	}
	rosterDocs, err := tx.Query(ctx, ColTeamMembers, "teammate_id", req.TeammateID, 1)
	if err != nil {
		return err
	}
	if len(rosterDocs) > 0 {
		if err := tx.Set(ctx, ColTeamMembers, rosterDocs[0].ID(), map[string]any{"employee_code": code}, true); err != nil {
			return err
		}
	}
	return nil
}
