package organizationstore_test

import (
	"context"
	"errors"
	"testing"

	organizationstore "github.com/astoriahq/studioops/internal/app/store/organizations"
	"github.com/astoriahq/studioops/internal/app/system/status"
	"github.com/astoriahq/studioops/internal/docstore/memstore"
	"github.com/astoriahq/studioops/internal/domain/models"
)

func TestCreate_RoundTrip(t *testing.T) {
	s := organizationstore.New(memstore.New())
	ctx := context.Background()

	created, err := s.Create(ctx, models.Organization{Name: "Astoria Studios"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("Create left ID unset")
	}
	if created.Status != status.Active {
		t.Errorf("status = %q, want active default", created.Status)
	}

	got, err := s.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Astoria Studios" || got.NameCI == "" {
		t.Errorf("stored org = %+v", got)
	}
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	s := organizationstore.New(memstore.New())
	ctx := context.Background()

	if _, err := s.Create(ctx, models.Organization{Name: "Astoria Studios"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := s.Create(ctx, models.Organization{Name: "ASTORIA studios"})
	if !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Fatalf("err = %v, want ErrDuplicateOrganization", err)
	}
}

func TestSetCodeFields(t *testing.T) {
	s := organizationstore.New(memstore.New())
	ctx := context.Background()

	created, err := s.Create(ctx, models.Organization{Name: "Astoria Studios"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.SetCodeFields(ctx, created.ID.Hex(), map[string]any{"org_code": "ASTR"}); err != nil {
		t.Fatalf("SetCodeFields: %v", err)
	}

	got, err := s.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OrgCode != "ASTR" {
		t.Errorf("org_code = %q, want ASTR", got.OrgCode)
	}
	if got.Name != "Astoria Studios" {
		t.Errorf("merge clobbered name: %+v", got)
	}
}

func TestListByStatus(t *testing.T) {
	s := organizationstore.New(memstore.New())
	ctx := context.Background()

	if _, err := s.Create(ctx, models.Organization{Name: "Alpha"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, models.Organization{Name: "Beta", Status: status.Archived}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	active, err := s.ListByStatus(ctx, status.Active, 0)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Alpha" {
		t.Errorf("active orgs = %+v, want just Alpha", active)
	}
}
