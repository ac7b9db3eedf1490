package codes_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/astoriahq/studioops/internal/docstore"
	"github.com/astoriahq/studioops/internal/docstore/memstore"
	"github.com/astoriahq/studioops/internal/domain/models"
	"go.uber.org/zap"
)

func seedOrgCode(t *testing.T, ds *memstore.Store, code, orgID string) {
	t.Helper()
	entry := models.OrgCodeEntry{Code: code, OrgID: orgID, CreatedAt: time.Now().UTC()}
	if err := ds.Set(context.Background(), codes.ColOrgCodes, code, entry, false); err != nil {
		t.Fatalf("seed org code: %v", err)
	}
}

func seedCodeEntry(t *testing.T, ds *memstore.Store, code, orgID, role string, number int64) {
	t.Helper()
	entry := models.CodeEntry{Code: code, OrgID: orgID, Role: role, Number: number, CreatedAt: time.Now().UTC()}
	if err := ds.Set(context.Background(), codes.ColEmployeeCodes, code, entry, false); err != nil {
		t.Fatalf("seed code entry: %v", err)
	}
}

func readCounter(t *testing.T, ds *memstore.Store, orgID, role string) (models.RoleCounter, bool) {
	t.Helper()
	doc, err := ds.Get(context.Background(), codes.ColRoleCounters, models.RoleCounterID(orgID, role))
	if docstore.IsNotFound(err) {
		return models.RoleCounter{}, false
	}
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	var counter models.RoleCounter
	if err := doc.DataTo(&counter); err != nil {
		t.Fatalf("decode counter: %v", err)
	}
	return counter, true
}

func testLogger() *zap.Logger { return zap.NewNop() }

func newAllocator(ds *memstore.Store, opts ...codes.Option) *codes.Allocator {
	return codes.NewAllocator(ds, testLogger(), opts...)
}

func TestAllocate_SequentialMonotonicity(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")
	alloc := newAllocator(ds)

	req := codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1"}

	first, err := alloc.Allocate(context.Background(), req)
	if err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}
	if first.Code != "ASTR-EDITOR-00001" || first.Number != 1 {
		t.Errorf("first allocation = %q (number %d), want ASTR-EDITOR-00001 (1)", first.Code, first.Number)
	}

	second, err := alloc.Allocate(context.Background(), req)
	if err != nil {
		t.Fatalf("second Allocate failed: %v", err)
	}
	if second.Code != "ASTR-EDITOR-00002" || second.Number != 2 {
		t.Errorf("second allocation = %q (number %d), want ASTR-EDITOR-00002 (2)", second.Code, second.Number)
	}
}

func TestAllocate_SkipAheadOnSeededCollision(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")
	// Index already holds number 1 but no counter exists yet.
	seedCodeEntry(t, ds, "ASTR-EDITOR-00001", "org-1", "EDITOR", 1)

	res, err := newAllocator(ds).Allocate(context.Background(),
		codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if res.Number != 2 {
		t.Errorf("number = %d, want 2", res.Number)
	}
	if res.Code != "ASTR-EDITOR-00002" {
		t.Errorf("code = %q, want ASTR-EDITOR-00002", res.Code)
	}

	counter, ok := readCounter(t, ds, "org-1", "EDITOR")
	if !ok {
		t.Fatal("expected counter to exist after allocation")
	}
	if counter.Next != 3 {
		t.Errorf("counter next = %d, want 3", counter.Next)
	}
}

func TestAllocate_SkipAheadPastRecordedNumber(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")
	// A stale-looking entry whose recorded number is far ahead of the
	// counter: the scan must jump past it, not walk one by one.
	seedCodeEntry(t, ds, "ASTR-EDITOR-00001", "org-1", "EDITOR", 40)

	res, err := newAllocator(ds).Allocate(context.Background(),
		codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if res.Number != 41 {
		t.Errorf("number = %d, want 41", res.Number)
	}
}

func TestAllocate_OrgCodeNotFound(t *testing.T) {
	ds := memstore.New()

	_, err := newAllocator(ds).Allocate(context.Background(),
		codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1"})
	if !errors.Is(err, codes.ErrOrgCodeNotFound) {
		t.Fatalf("err = %v, want ErrOrgCodeNotFound", err)
	}
}

func TestAllocate_OrgMismatchRejectedWithoutWrites(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-2")

	_, err := newAllocator(ds).Allocate(context.Background(),
		codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1"})
	if !errors.Is(err, codes.ErrOrgMismatch) {
		t.Fatalf("err = %v, want ErrOrgMismatch", err)
	}

	var mismatch *codes.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatal("expected *MismatchError for diagnostics")
	}
	if mismatch.MappedOrgID != "org-2" {
		t.Errorf("mapped org = %q, want org-2", mismatch.MappedOrgID)
	}

	// No counter or index writes may have landed for either tenant.
	for _, orgID := range []string{"org-1", "org-2"} {
		if _, ok := readCounter(t, ds, orgID, "EDITOR"); ok {
			t.Errorf("counter for %s was written during rejected allocation", orgID)
		}
	}
	if _, err := ds.Get(context.Background(), codes.ColEmployeeCodes, "ASTR-EDITOR-00001"); !docstore.IsNotFound(err) {
		t.Errorf("uniqueness index was written during rejected allocation (err=%v)", err)
	}
}

func TestAllocate_ExhaustionBoundary(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")
	for i := int64(1); i <= 128; i++ {
		seedCodeEntry(t, ds, fmt.Sprintf("ASTR-EDITOR-%05d", i), "org-1", "EDITOR", i)
	}

	_, err := newAllocator(ds).Allocate(context.Background(),
		codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1"})
	if !errors.Is(err, codes.ErrAllocationExhausted) {
		t.Fatalf("err = %v, want ErrAllocationExhausted", err)
	}
}

func TestAllocate_NormalizesRoleAndOrgCode(t *testing.T) {
	ds := memstore.New()
	seedOrgCode(t, ds, "ASTR", "org-1")

	res, err := newAllocator(ds).Allocate(context.Background(),
		codes.Request{OrgCode: " as-tr ", Role: "post producer", OrgID: "org-1"})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if res.Code != "ASTR-POST_PRODUCER-00001" {
		t.Errorf("code = %q, want ASTR-POST_PRODUCER-00001", res.Code)
	}
	if res.Role != "POST_PRODUCER" {
		t.Errorf("role = %q, want POST_PRODUCER", res.Role)
	}
}

func TestAllocate_StampsTeammateAndRoster(t *testing.T) {
	ds := memstore.New()
	ctx := context.Background()
	seedOrgCode(t, ds, "ASTR", "org-1")

	if err := ds.Set(ctx, codes.ColTeammates, "tm-1",
		map[string]any{"name": "Quinn", "role": "EDITOR", "org_id": "org-1"}, false); err != nil {
		t.Fatalf("seed teammate: %v", err)
	}
	if err := ds.Set(ctx, codes.ColTeamMembers, "roster-1",
		map[string]any{"teammate_id": "tm-1", "org_id": "org-1", "role": "EDITOR"}, false); err != nil {
		t.Fatalf("seed roster: %v", err)
	}

	res, err := newAllocator(ds).Allocate(ctx,
		codes.Request{OrgCode: "ASTR", Role: "EDITOR", OrgID: "org-1", TeammateID: "tm-1"})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	for _, probe := range []struct {
		collection string
		id         string
	}{
		{codes.ColTeammates, "tm-1"},
		{codes.ColTeamMembers, "roster-1"},
	} {
		doc, err := ds.Get(ctx, probe.collection, probe.id)
		if err != nil {
			t.Fatalf("read %s/%s: %v", probe.collection, probe.id, err)
		}
		var fields map[string]any
		if err := doc.DataTo(&fields); err != nil {
			t.Fatalf("decode %s/%s: %v", probe.collection, probe.id, err)
		}
		if fields["employee_code"] != res.Code {
			t.Errorf("%s/%s employee_code = %v, want %q", probe.collection, probe.id, fields["employee_code"], res.Code)
		}
		if fields["role"] != "EDITOR" {
			t.Errorf("%s/%s role clobbered by merge: %v", probe.collection, probe.id, fields["role"])
		}
	}

	// The uniqueness entry records the teammate.
	doc, err := ds.Get(ctx, codes.ColEmployeeCodes, res.Code)
	if err != nil {
		t.Fatalf("read code entry: %v", err)
	}
	var entry models.CodeEntry
	if err := doc.DataTo(&entry); err != nil {
		t.Fatalf("decode code entry: %v", err)
	}
	if entry.TeammateID != "tm-1" {
		t.Errorf("code entry teammate = %q, want tm-1", entry.TeammateID)
	}
}
