package teammatestore_test

import (
	"context"
	"errors"
	"testing"

	teammatestore "github.com/astoriahq/studioops/internal/app/store/teammates"
	"github.com/astoriahq/studioops/internal/app/system/status"
	"github.com/astoriahq/studioops/internal/docstore/memstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_WritesProfileAndRoster(t *testing.T) {
	s := teammatestore.New(memstore.New())
	ctx := context.Background()
	orgID := primitive.NewObjectID()

	created, err := s.Create(ctx, models.Teammate{OrgID: orgID, Name: "Rae Chen", Role: "EDITOR"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() || created.Status != status.Active {
		t.Errorf("created = %+v", created)
	}

	got, err := s.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Rae Chen" || got.OrgID != orgID {
		t.Errorf("profile = %+v", got)
	}

	roster, err := s.ListRoster(ctx, orgID.Hex(), 0)
	if err != nil {
		t.Fatalf("ListRoster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster has %d records, want 1", len(roster))
	}
	if roster[0].TeammateID != created.ID || roster[0].Role != "EDITOR" {
		t.Errorf("roster record = %+v", roster[0])
	}
}

func TestCreate_RequiresOrgID(t *testing.T) {
	s := teammatestore.New(memstore.New())
	_, err := s.Create(context.Background(), models.Teammate{Name: "No Org"})
	if !errors.Is(err, teammatestore.ErrMissingOrgID) {
		t.Fatalf("err = %v, want ErrMissingOrgID", err)
	}
}

func TestListByOrg_ScopedToTenant(t *testing.T) {
	s := teammatestore.New(memstore.New())
	ctx := context.Background()
	orgA := primitive.NewObjectID()
	orgB := primitive.NewObjectID()

	for _, tm := range []models.Teammate{
		{OrgID: orgA, Name: "A1", Role: "EDITOR"},
		{OrgID: orgA, Name: "A2", Role: "COLORIST"},
		{OrgID: orgB, Name: "B1", Role: "EDITOR"},
	} {
		if _, err := s.Create(ctx, tm); err != nil {
			t.Fatalf("Create %s: %v", tm.Name, err)
		}
	}

	got, err := s.ListByOrg(ctx, orgA.Hex(), 0)
	if err != nil {
		t.Fatalf("ListByOrg: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d teammates for org A, want 2", len(got))
	}
	for _, tm := range got {
		if tm.OrgID != orgA {
			t.Errorf("teammate %q leaked from another org", tm.Name)
		}
	}
}
