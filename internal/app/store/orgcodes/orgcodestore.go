// internal/app/store/orgcodes/orgcodestore.go
package orgcodestore

import (
	"context"
	"errors"
	"time"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/domain/models"
)

// Store manages the canonical org-code mapping. Provisioned entries are the
// authoritative path the allocation transaction verifies against; backfilled
// entries are written by the resolver, not through this store.
type Store struct {
	ds docstore.Store
}

var (
	ErrEmptyCode = errors.New("organization code is empty after normalization")

	// ErrCodeTaken means the code already maps to a different organization.
	ErrCodeTaken = errors.New("organization code is already mapped to another organization")
)

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Provision maps code to orgID. Idempotent for the same pair; refuses to
// steal a code that belongs to another tenant.
func (s *Store) Provision(ctx context.Context, code, orgID string) (models.OrgCodeEntry, error) {
	code = codes.NormalizeOrgCode(code)
	if code == "" {
		return models.OrgCodeEntry{}, ErrEmptyCode
	}

	existing, err := s.GetByCode(ctx, code)
	if err != nil && !docstore.IsNotFound(err) {
		return models.OrgCodeEntry{}, err
	}
	if err == nil {
		if existing.OrgID != orgID {
			return models.OrgCodeEntry{}, ErrCodeTaken
		}
		return existing, nil
	}

	entry := models.OrgCodeEntry{
		Code:      code,
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ds.Set(ctx, codes.ColOrgCodes, code, entry, false); err != nil {
		return models.OrgCodeEntry{}, err
	}
	return entry, nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (models.OrgCodeEntry, error) {
	doc, err := s.ds.Get(ctx, codes.ColOrgCodes, code)
	if err != nil {
		return models.OrgCodeEntry{}, err
	}
	var entry models.OrgCodeEntry
	if err := doc.DataTo(&entry); err != nil {
		return models.OrgCodeEntry{}, err
	}
	entry.Code = doc.ID()
	return entry, nil
}

// GetByOrg reverse-looks-up the mapping by organization id.
func (s *Store) GetByOrg(ctx context.Context, orgID string) (models.OrgCodeEntry, error) {
	docs, err := s.ds.Query(ctx, codes.ColOrgCodes, "org_id", orgID, 1)
	if err != nil {
		return models.OrgCodeEntry{}, err
	}
	if len(docs) == 0 {
		return models.OrgCodeEntry{}, docstore.ErrNotFound
	}
	var entry models.OrgCodeEntry
	if err := docs[0].DataTo(&entry); err != nil {
		return models.OrgCodeEntry{}, err
	}
	entry.Code = docs[0].ID()
	return entry, nil
}
