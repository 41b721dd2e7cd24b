package service

import (
	"context"
	"errors"
	"testing"

	"leadportal_backend/internal/leads/domain"
)

func TestDetectAndMarkMarksEveryGroupMember(t *testing.T) {
	repo := &fakeStore{
		groups: []domain.DuplicateGroup{
			{Key: "+12124567890", IDs: []int64{1, 2, 3}},
		},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	marked, err := svc.DetectAndMark(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 3 {
		t.Fatalf("expected 3 marked, got %d", marked)
	}
	for _, id := range []int64{1, 2, 3} {
		if !overlay.overlays[id].Duplicate {
			t.Fatalf("expected lead %d to be marked duplicate", id)
		}
	}
}

func TestDetectAndMarkIsIdempotent(t *testing.T) {
	repo := &fakeStore{
		groups: []domain.DuplicateGroup{
			{Key: "+12124567890", IDs: []int64{1, 2}},
		},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	first, err := svc.DetectAndMark(context.Background(), "")
	if err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	second, err := svc.DetectAndMark(context.Background(), "")
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical counts across passes, got %d then %d", first, second)
	}
	for _, id := range []int64{1, 2} {
		if !overlay.overlays[id].Duplicate {
			t.Fatalf("expected lead %d to stay marked", id)
		}
	}
}

func TestDetectAndMarkSkipsExplicitlyRejectedLeads(t *testing.T) {
	repo := &fakeStore{
		groups: []domain.DuplicateGroup{
			{Key: "+12124567890", IDs: []int64{1, 2, 3}},
		},
	}
	overlay := newFakeOverlay()
	overlay.overlays[2] = domain.StatusOverlay{
		LeadID:              2,
		UserMarkedDuplicate: domain.OverrideRejected,
	}
	svc := newTestService(repo, nil, overlay)

	marked, err := svc.DetectAndMark(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}
	if overlay.overlays[2].Duplicate {
		t.Fatal("detector must not override an explicit user rejection")
	}
	if !overlay.overlays[1].Duplicate || !overlay.overlays[3].Duplicate {
		t.Fatal("other group members must still be marked")
	}
}

func TestDetectAndMarkRemarksExplicitlyConfirmedLeads(t *testing.T) {
	repo := &fakeStore{
		groups: []domain.DuplicateGroup{
			{Key: "+12124567890", IDs: []int64{1, 2}},
		},
	}
	overlay := newFakeOverlay()
	overlay.overlays[1] = domain.StatusOverlay{
		LeadID:              1,
		Duplicate:           true,
		UserMarkedDuplicate: domain.OverrideConfirmed,
	}
	svc := newTestService(repo, nil, overlay)

	marked, err := svc.DetectAndMark(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 2 {
		t.Fatalf("an explicit confirmation does not exempt a lead, got %d marked", marked)
	}
}

func TestDetectAndMarkScopedToVendorLabel(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Label: "vendor-a", Phone1: "+12124567890"},
			{ID: 2, Label: "vendor-a", Phone1: "+12124567890"},
			{ID: 3, Label: "vendor-b", Phone1: "+12124567890"},
		},
		groups: []domain.DuplicateGroup{
			{Key: "+12124567890", IDs: []int64{1, 2, 3}},
		},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	marked, err := svc.DetectAndMark(context.Background(), "vendor-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected only vendor-a members marked, got %d", marked)
	}
	if overlay.overlays[3].Duplicate {
		t.Fatal("lead from another vendor must not be touched in a scoped pass")
	}
}

func TestDetectAndMarkContinuesPastPerLeadFailures(t *testing.T) {
	repo := &fakeStore{
		groups: []domain.DuplicateGroup{
			{Key: "+12124567890", IDs: []int64{1, 2, 3}},
		},
	}
	overlay := newFakeOverlay()
	overlay.upsertErr[2] = errors.New("connection reset")
	svc := newTestService(repo, nil, overlay)

	marked, err := svc.DetectAndMark(context.Background(), "")
	if marked != 2 {
		t.Fatalf("expected 2 marked despite one failure, got %d", marked)
	}

	var partial *PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if len(partial.Failures) != 1 || partial.Failures[0].LeadID != 2 {
		t.Fatalf("expected exactly lead 2 in failures, got %v", partial.Failures)
	}
	if partial.Marked != 2 {
		t.Fatalf("expected Marked=2 in error, got %d", partial.Marked)
	}
	if !overlay.overlays[1].Duplicate || !overlay.overlays[3].Duplicate {
		t.Fatal("leads after the failed one must still be processed")
	}
}

func TestCollectGroupMembersMergesNormalizedKeys(t *testing.T) {
	// Both keys normalize to +12124567890, so members dedupe across groups.
	groups := []domain.DuplicateGroup{
		{Key: "2124567890", IDs: []int64{1, 2}},
		{Key: "(212) 456-7890", IDs: []int64{2, 3}},
	}

	ids := collectGroupMembers(groups)
	if len(ids) != 3 {
		t.Fatalf("expected 3 distinct ids, got %v", ids)
	}
	for i, want := range []int64{1, 2, 3} {
		if ids[i] != want {
			t.Fatalf("expected sorted ids [1 2 3], got %v", ids)
		}
	}
}

func TestDetectAndMarkNoGroupsIsNoOp(t *testing.T) {
	repo := &fakeStore{}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	marked, err := svc.DetectAndMark(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 0 {
		t.Fatalf("expected 0 marked, got %d", marked)
	}
	if len(overlay.upserts) != 0 {
		t.Fatal("no upserts expected when there are no duplicate groups")
	}
}
