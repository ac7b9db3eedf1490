// internal/app/store/teammates/teammatestore.go
package teammatestore

import (
	"context"
	"errors"
	"time"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/app/system/status"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	ds docstore.Store
}

var ErrMissingOrgID = errors.New("teammate missing organization id")

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Create persists a teammate profile and its roster record. The roster
// record is what the team page lists and what the org-code resolver scans.
func (s *Store) Create(ctx context.Context, tm models.Teammate) (models.Teammate, error) {
	if tm.OrgID.IsZero() {
		return models.Teammate{}, ErrMissingOrgID
	}
	now := time.Now().UTC()
	tm.ID = primitive.NewObjectID()
	tm.NameCI = text.Fold(tm.Name)
	if tm.Status == "" {
		tm.Status = status.Active
	}
	tm.CreatedAt = now
	tm.UpdatedAt = now
	if err := s.ds.Set(ctx, codes.ColTeammates, tm.ID.Hex(), tm, false); err != nil {
		return models.Teammate{}, err
	}

	roster := models.TeamMemberRecord{
		ID:           primitive.NewObjectID(),
		OrgID:        tm.OrgID,
		TeammateID:   tm.ID,
		Role:         tm.Role,
		EmployeeCode: tm.EmployeeCode,
		CreatedAt:    now,
	}
	if err := s.ds.Set(ctx, codes.ColTeamMembers, roster.ID.Hex(), roster, false); err != nil {
		return models.Teammate{}, err
	}
	return tm, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Teammate, error) {
	doc, err := s.ds.Get(ctx, codes.ColTeammates, id)
	if err != nil {
		return models.Teammate{}, err
	}
	var tm models.Teammate
	if err := doc.DataTo(&tm); err != nil {
		return models.Teammate{}, err
	}
	return tm, nil
}

// ListByOrg returns up to limit teammates for the organization.
func (s *Store) ListByOrg(ctx context.Context, orgID string, limit int) ([]models.Teammate, error) {
	docs, err := s.ds.Query(ctx, codes.ColTeammates, "org_id", orgID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.Teammate, 0, len(docs))
	for _, doc := range docs {
		var tm models.Teammate
		if err := doc.DataTo(&tm); err != nil {
			return nil, err
		}
		out = append(out, tm)
	}
	return out, nil
}

// ListRoster returns up to limit roster records for the organization.
func (s *Store) ListRoster(ctx context.Context, orgID string, limit int) ([]models.TeamMemberRecord, error) {
	docs, err := s.ds.Query(ctx, codes.ColTeamMembers, "org_id", orgID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.TeamMemberRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.TeamMemberRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
