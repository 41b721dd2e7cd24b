package status

import (
	"context"
	"testing"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, 5*time.Second), mr
}

func boolPtr(v bool) *bool { return &v }

func TestGetReturnsNotOKWhenNoOverlayExists(t *testing.T) {
	store, _ := newTestStore(t)

	_, ok, err := store.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a lead with no overlay document")
	}
}

func TestUpsertCreatesOverlayLazily(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, 7, domain.OverlayPatch{Duplicate: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	overlay, ok, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected overlay document after first upsert")
	}
	if !overlay.Duplicate {
		t.Fatal("expected duplicate=true")
	}
	if overlay.Booked || overlay.Invalid {
		t.Fatal("expected untouched flags to default to false")
	}
	if overlay.UserMarkedDuplicate != domain.OverrideUnset {
		t.Fatal("expected userMarkedDuplicate to be unset when never written")
	}
}

func TestUpsertMergesAtFieldLevel(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, 9, domain.OverlayPatch{Duplicate: boolPtr(true)}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, 9, domain.OverlayPatch{Booked: boolPtr(true)}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	overlay, _, err := store.Get(ctx, 9)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !overlay.Duplicate {
		t.Fatal("booked upsert must not clobber the duplicate flag")
	}
	if !overlay.Booked {
		t.Fatal("expected booked=true after second upsert")
	}
}

func TestUpsertEmptyPatchIsNoOp(t *testing.T) {
	store, mr := newTestStore(t)

	if err := store.Upsert(context.Background(), 3, domain.OverlayPatch{}); err != nil {
		t.Fatalf("empty upsert failed: %v", err)
	}
	if mr.Exists("lead:status:3") {
		t.Fatal("empty patch must not create an overlay document")
	}
}

func TestDecodeTriStateUserMarkedDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, 11, domain.OverlayPatch{UserMarkedDuplicate: boolPtr(false)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	overlay, _, err := store.Get(ctx, 11)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if overlay.UserMarkedDuplicate != domain.OverrideRejected {
		t.Fatal("an explicit false must decode as a rejection, not as unset")
	}

	if err := store.Upsert(ctx, 11, domain.OverlayPatch{UserMarkedDuplicate: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	overlay, _, err = store.Get(ctx, 11)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if overlay.UserMarkedDuplicate != domain.OverrideConfirmed {
		t.Fatal("an explicit true must decode as a confirmation")
	}
}

func TestGetManySkipsAbsentOverlays(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, 1, domain.OverlayPatch{Booked: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, 3, domain.OverlayPatch{Duplicate: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	overlays, err := store.GetMany(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("getmany failed: %v", err)
	}
	if len(overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(overlays))
	}
	if !overlays[1].Booked {
		t.Fatal("expected lead 1 booked")
	}
	if !overlays[3].Duplicate {
		t.Fatal("expected lead 3 duplicate")
	}
	if _, ok := overlays[2]; ok {
		t.Fatal("lead 2 has no overlay and must be absent from the result")
	}
}

func TestGetManyEmptyInput(t *testing.T) {
	store, _ := newTestStore(t)

	overlays, err := store.GetMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("getmany failed: %v", err)
	}
	if len(overlays) != 0 {
		t.Fatalf("expected empty result, got %d", len(overlays))
	}
}

func TestListFlaggedFiltersByFlagValues(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, 1, domain.OverlayPatch{Duplicate: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, 2, domain.OverlayPatch{Duplicate: boolPtr(true), Booked: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, 3, domain.OverlayPatch{Booked: boolPtr(true)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	matched, err := store.ListFlagged(ctx, Filter{Duplicate: boolPtr(true)})
	if err != nil {
		t.Fatalf("listflagged failed: %v", err)
	}
	got := make(map[int64]bool, len(matched))
	for _, overlay := range matched {
		got[overlay.LeadID] = true
	}
	if len(got) != 2 || !got[1] || !got[2] {
		t.Fatalf("expected leads 1 and 2, got %v", got)
	}

	matched, err = store.ListFlagged(ctx, Filter{Duplicate: boolPtr(true), Booked: boolPtr(false)})
	if err != nil {
		t.Fatalf("listflagged failed: %v", err)
	}
	if len(matched) != 1 || matched[0].LeadID != 1 {
		t.Fatalf("expected only lead 1, got %v", matched)
	}
}

func TestListFlaggedNilFilterMatchesEverything(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		if err := store.Upsert(ctx, id, domain.OverlayPatch{Invalid: boolPtr(id%2 == 0)}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	matched, err := store.ListFlagged(ctx, Filter{})
	if err != nil {
		t.Fatalf("listflagged failed: %v", err)
	}
	if len(matched) != 3 {
		t.Fatalf("expected all 3 overlays, got %d", len(matched))
	}
}
