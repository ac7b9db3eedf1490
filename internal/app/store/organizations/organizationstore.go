// internal/app/store/organizations/organizationstore.go
package organizationstore

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

var ErrDuplicateOrganization = errors.New("an organization with this name already exists")

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	if org.Status == "" {
		org.Status = status.Active
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	existing, err := s.ds.Query(ctx, codes.ColOrganizations, "name_ci", org.NameCI, 1)
	if err != nil {
		return models.Organization{}, err
	}
	if len(existing) > 0 {
		return models.Organization{}, ErrDuplicateOrganization
	}
	if err := s.ds.Set(ctx, codes.ColOrganizations, org.ID.Hex(), org, false); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Organization, error) {
	doc, err := s.ds.Get(ctx, codes.ColOrganizations, id)
	if err != nil {
		return models.Organization{}, err
	}
	var org models.Organization
	if err := doc.DataTo(&org); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// SetCodeFields merges code-shaped alias fields onto the organization
// record. Used by provisioning flows to seed the resolver's probe surface.
func (s *Store) SetCodeFields(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	return s.ds.Set(ctx, codes.ColOrganizations, id, fields, true)
}

// ListByStatus returns up to limit organizations with the given status.
func (s *Store) ListByStatus(ctx context.Context, st string, limit int) ([]models.Organization, error) {
	docs, err := s.ds.Query(ctx, codes.ColOrganizations, "status", st, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.Organization, 0, len(docs))
	for _, doc := range docs {
		var org models.Organization
		if err := doc.DataTo(&org); err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, nil
}
