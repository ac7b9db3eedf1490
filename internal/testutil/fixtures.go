package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/app/system/status"
	"github.com/astoriahq/studioops/internal/docstore/memstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context, for
// handler tests that call handlers directly instead of through a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures seeds test data into an in-memory docstore.
type Fixtures struct {
	ds *memstore.Store
	t  *testing.T
}

func NewFixtures(t *testing.T, ds *memstore.Store) *Fixtures {
	t.Helper()
	return &Fixtures{ds: ds, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() *memstore.Store { return f.ds }

// CreateOrganization seeds an active organization and returns it.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()
	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    status.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.ds.Set(ctx, codes.ColOrganizations, org.ID.Hex(), org, false); err != nil {
		f.t.Fatalf("fixture organization: %v", err)
	}
	return org
}

// ProvisionOrgCode seeds the canonical code mapping for an organization.
func (f *Fixtures) ProvisionOrgCode(ctx context.Context, code, orgID string) models.OrgCodeEntry {
	f.t.Helper()
	entry := models.OrgCodeEntry{
		Code:      codes.NormalizeOrgCode(code),
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.ds.Set(ctx, codes.ColOrgCodes, entry.Code, entry, false); err != nil {
		f.t.Fatalf("fixture org code: %v", err)
	}
	return entry
}

// CreateTeammate seeds a teammate profile and its roster record.
func (f *Fixtures) CreateTeammate(ctx context.Context, orgID primitive.ObjectID, name, role string) models.Teammate {
	f.t.Helper()
	now := time.Now().UTC()
	tm := models.Teammate{
		ID:        primitive.NewObjectID(),
		OrgID:     orgID,
		Name:      name,
		NameCI:    text.Fold(name),
		Role:      role,
		Status:    status.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.ds.Set(ctx, codes.ColTeammates, tm.ID.Hex(), tm, false); err != nil {
		f.t.Fatalf("fixture teammate: %v", err)
	}
	roster := models.TeamMemberRecord{
		ID:         primitive.NewObjectID(),
		OrgID:      orgID,
		TeammateID: tm.ID,
		Role:       role,
		CreatedAt:  now,
	}
	if err := f.ds.Set(ctx, codes.ColTeamMembers, roster.ID.Hex(), roster, false); err != nil {
		f.t.Fatalf("fixture roster record: %v", err)
	}
	return tm
}
