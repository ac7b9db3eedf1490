package codes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/app/system/codecache"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/docstore/memstore"
	"github.com/astoriahq/studioops/internal/domain/models"
)

func newResolver(ds docstore.Store) *codes.Resolver {
	return codes.NewResolver(ds, codecache.NewMemory(time.Minute), testLogger())
}

func TestResolve_CanonicalIndex(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")

	res, err := newResolver(ds).Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Code != "ASTR" {
		t.Errorf("code = %q, want ASTR", res.Code)
	}
	if res.Source != codes.SourceCanonical {
		t.Errorf("source = %q, want %q", res.Source, codes.SourceCanonical)
	}
}

func TestResolve_CacheHitOnSecondCall(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")
	r := newResolver(ds)

	if _, err := r.Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1"}); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	res, err := r.Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if res.Source != codes.SourceCache {
		t.Errorf("source = %q, want %q", res.Source, codes.SourceCache)
	}
}

func TestResolve_OverrideBackfills(t *testing.T) {
	ds := memstore.New()
	r := newResolver(ds)

	res, err := r.Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1", Override: " as-tr "})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Code != "ASTR" || res.Source != codes.SourceOverride {
		t.Errorf("resolution = %+v, want ASTR via override", res)
	}

	entry := readOrgCodeEntry(t, ds, "ASTR")
	if entry.OrgID != "org-1" {
		t.Errorf("backfilled org = %q, want org-1", entry.OrgID)
	}
	if !entry.Backfilled || entry.BackfilledAt == nil {
		t.Error("expected backfill markers on the canonical entry")
	}
}

func TestResolve_ClaimsAliases(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
	}{
		{"flat alias", map[string]any{"org_code": "astr"}},
		{"camel alias", map[string]any{"orgCode": "ASTR"}},
		{"company alias", map[string]any{"company_code": "AS-TR"}},
		{"nested org", map[string]any{"org": map[string]any{"code": "astr"}}},
		{"nested short code", map[string]any{"org": map[string]any{"short_code": "ASTR"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := memstore.New()
			res, err := newResolver(ds).Resolve(context.Background(),
				codes.ResolveInput{OrgID: "org-1", Claims: tt.claims})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Code != "ASTR" {
				t.Errorf("code = %q, want ASTR", res.Code)
			}
			if res.Source != codes.SourceClaims {
				t.Errorf("source = %q, want %q", res.Source, codes.SourceClaims)
			}
		})
	}
}

func TestResolve_OrganizationRecordAlias(t *testing.T) {
	ds := memstore.New()
	if err := ds.Set(context.Background(), codes.ColOrganizations, "org-1",
		map[string]any{"name": "Astoria Studios", "short_code": "astr"}, false); err != nil {
		t.Fatalf("seed organization: %v", err)
	}

	res, err := newResolver(ds).Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Code != "ASTR" || res.Source != codes.SourceOrgRecord {
		t.Errorf("resolution = %+v, want ASTR via organization record", res)
	}
}

func TestResolve_RosterFallbackAndBackfill(t *testing.T) {
	ds := memstore.New()
	ctx := context.Background()

	// One roster record already carries an allocated code; its prefix is
	// the implied organization code.
	if err := ds.Set(ctx, codes.ColTeamMembers, "roster-1",
		map[string]any{"org_id": "org-1", "teammate_id": "tm-1", "employee_code": "ASTR-EDITOR-00042"}, false); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
	// Records without codes are skipped.
	if err := ds.Set(ctx, codes.ColTeamMembers, "roster-0",
		map[string]any{"org_id": "org-1", "teammate_id": "tm-0"}, false); err != nil {
		t.Fatalf("seed roster: %v", err)
	}

	r := newResolver(ds)
	res, err := r.Resolve(ctx, codes.ResolveInput{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Code != "ASTR" || res.Source != codes.SourceRoster {
		t.Errorf("resolution = %+v, want ASTR via roster", res)
	}

	entry := readOrgCodeEntry(t, ds, "ASTR")
	if entry.OrgID != "org-1" || !entry.Backfilled {
		t.Errorf("canonical entry after backfill = %+v", entry)
	}

	// A repeat call must not reach the roster again: the backfilled
	// mapping (or the cache) wins first.
	res2, err := r.Resolve(ctx, codes.ResolveInput{OrgID: "org-1"})
	if err != nil {
		t.Fatalf("repeat Resolve failed: %v", err)
	}
	if res2.Source == codes.SourceRoster {
		t.Errorf("repeat resolution used the roster scan; want cache or canonical (got %q)", res2.Source)
	}
}

func TestResolve_NotFoundWithGuidance(t *testing.T) {
	ds := memstore.New()

	_, err := newResolver(ds).Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1"})
	if !errors.Is(err, codes.ErrOrgCodeNotFound) {
		t.Fatalf("err = %v, want ErrOrgCodeNotFound", err)
	}
	var nf *codes.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("expected *NotFoundError")
	}
	if nf.Guidance == "" {
		t.Error("expected caller-actionable guidance in the error")
	}
}

// failingWrites wraps a memstore and fails every top-level Set, so the
// backfill path can be exercised.
type failingWrites struct {
	*memstore.Store
}

func (s *failingWrites) Set(ctx context.Context, collection, id string, data any, merge bool) error {
	return errors.New("write unavailable")
}

func TestResolve_BackfillFailureSurfaces(t *testing.T) {
	ds := &failingWrites{Store: memstore.New()}

	_, err := codes.NewResolver(ds, codecache.NewMemory(time.Minute), testLogger()).
		Resolve(context.Background(), codes.ResolveInput{OrgID: "org-1", Override: "ASTR"})
	if !errors.Is(err, codes.ErrOrgCodeNotFound) {
		t.Fatalf("err = %v, want ErrOrgCodeNotFound after failed backfill", err)
	}
}

func readOrgCodeEntry(t *testing.T, ds *memstore.Store, code string) models.OrgCodeEntry {
	t.Helper()
	doc, err := ds.Get(context.Background(), codes.ColOrgCodes, code)
	if err != nil {
		t.Fatalf("read org code %q: %v", code, err)
	}
	var entry models.OrgCodeEntry
	if err := doc.DataTo(&entry); err != nil {
		t.Fatalf("decode org code %q: %v", code, err)
	}
	return entry
}
