// internal/app/codes/errors.go
package codes

import (
	"errors"
	"fmt"
)

var (
	// ErrOrgCodeNotFound reports that no organization code could be found
	// or resolved for the tenant. The caller fixes this by supplying a code
	// or provisioning the canonical mapping; retrying cannot succeed.
	ErrOrgCodeNotFound = errors.New("organization code not found")

	// ErrOrgMismatch reports that the supplied organization code belongs to
	// a different tenant than the caller claims. Never retried.
	ErrOrgMismatch = errors.New("organization code belongs to a different organization")

	// ErrAllocationExhausted reports that the candidate scan hit its bound
	// without finding a free number. The number space is too crowded for
	// the configured pattern; widening the pattern is the remedy.
	ErrAllocationExhausted = errors.New("no free employee code within scan limit")

	// ErrAllocationFailed reports that the retry budget ran out while the
	// store kept aborting on contention. It wraps the last store error.
	ErrAllocationFailed = errors.New("employee code allocation failed after retries")
)

// MismatchError carries both sides of an organization-code mismatch so the
// caller can log which tenant the code actually maps to.
type MismatchError struct {
	Code        string
	WantOrgID   string
	MappedOrgID string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("org code %q maps to organization %s, not %s", e.Code, e.MappedOrgID, e.WantOrgID)
}

func (e *MismatchError) Unwrap() error { return ErrOrgMismatch }

// NotFoundError carries resolution guidance alongside ErrOrgCodeNotFound.
type NotFoundError struct {
	OrgID    string
	Guidance string
}

func (e *NotFoundError) Error() string {
	if e.Guidance == "" {
		return fmt.Sprintf("no organization code for %s", e.OrgID)
	}
	return fmt.Sprintf("no organization code for %s: %s", e.OrgID, e.Guidance)
}

func (e *NotFoundError) Unwrap() error { return ErrOrgCodeNotFound }
