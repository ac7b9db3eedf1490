package orgcodestore_test

import (
	"context"
	"errors"
	"testing"

	orgcodestore "github.com/astoriahq/studioops/internal/app/store/orgcodes"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/docstore/memstore"
)

func TestProvision_NormalizesAndStores(t *testing.T) {
	s := orgcodestore.New(memstore.New())
	ctx := context.Background()

	entry, err := s.Provision(ctx, " as-tr ", "org-1")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if entry.Code != "ASTR" || entry.OrgID != "org-1" {
		t.Errorf("entry = %+v, want ASTR → org-1", entry)
	}

	got, err := s.GetByCode(ctx, "ASTR")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.OrgID != "org-1" || got.Backfilled {
		t.Errorf("stored entry = %+v", got)
	}
}

func TestProvision_IdempotentForSamePair(t *testing.T) {
	s := orgcodestore.New(memstore.New())
	ctx := context.Background()

	first, err := s.Provision(ctx, "ASTR", "org-1")
	if err != nil {
		t.Fatalf("first Provision: %v", err)
	}
	second, err := s.Provision(ctx, "astr", "org-1")
	if err != nil {
		t.Fatalf("repeat Provision: %v", err)
	}
	if second.Code != first.Code || second.OrgID != first.OrgID {
		t.Errorf("repeat returned %+v, want the existing entry %+v", second, first)
	}
}

func TestProvision_RefusesForeignCode(t *testing.T) {
	s := orgcodestore.New(memstore.New())
	ctx := context.Background()

	if _, err := s.Provision(ctx, "ASTR", "org-1"); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	_, err := s.Provision(ctx, "ASTR", "org-2")
	if !errors.Is(err, orgcodestore.ErrCodeTaken) {
		t.Fatalf("err = %v, want ErrCodeTaken", err)
	}
}

func TestProvision_EmptyAfterNormalization(t *testing.T) {
	s := orgcodestore.New(memstore.New())
	_, err := s.Provision(context.Background(), " --- ", "org-1")
	if !errors.Is(err, orgcodestore.ErrEmptyCode) {
		t.Fatalf("err = %v, want ErrEmptyCode", err)
	}
}

func TestGetByOrg(t *testing.T) {
	s := orgcodestore.New(memstore.New())
	ctx := context.Background()

	if _, err := s.Provision(ctx, "ASTR", "org-1"); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	entry, err := s.GetByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("GetByOrg: %v", err)
	}
	if entry.Code != "ASTR" {
		t.Errorf("code = %q, want ASTR", entry.Code)
	}

	if _, err := s.GetByOrg(ctx, "org-none"); !docstore.IsNotFound(err) {
		t.Errorf("unmapped org: err = %v, want ErrNotFound", err)
	}
}
