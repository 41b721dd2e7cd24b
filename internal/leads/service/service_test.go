package service

import (
	"context"
	"testing"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/status"
	"leadportal_backend/platform/apperr"
)

var testDay = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedNow(svc *Service) {
	svc.now = func() time.Time { return testDay }
}

func TestTodaysLeadsExclusiveScope(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Timestamp: testDay},
			{ID: 2, Timestamp: testDay.AddDate(0, 0, -1)},
		},
	}
	svc := newTestService(repo, nil, newFakeOverlay())
	fixedNow(svc)

	leads, err := svc.TodaysLeads(context.Background(), ScopeExclusive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != 1 {
		t.Fatalf("expected only today's lead, got %v", leads)
	}
}

func TestTodaysLeadsCombinedConcatenatesBothDatabases(t *testing.T) {
	repo := &fakeStore{leads: []domain.Lead{{ID: 1, Timestamp: testDay}}}
	shared := &fakeStore{leads: []domain.Lead{{ID: 100, Timestamp: testDay}}}
	svc := newTestService(repo, shared, newFakeOverlay())
	fixedNow(svc)

	leads, err := svc.TodaysLeads(context.Background(), ScopeCombined)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected leads from both databases, got %d", len(leads))
	}
}

func TestTodaysLeadsSharedScopeWithoutSharedDatabase(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil, newFakeOverlay())
	fixedNow(svc)

	_, err := svc.TodaysLeads(context.Background(), ScopeShared)
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestTodaysLeadsCombinedFallsBackToPrimary(t *testing.T) {
	repo := &fakeStore{leads: []domain.Lead{{ID: 1, Timestamp: testDay}}}
	svc := newTestService(repo, nil, newFakeOverlay())
	fixedNow(svc)

	leads, err := svc.TodaysLeads(context.Background(), ScopeCombined)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("expected primary leads only, got %d", len(leads))
	}
}

func TestVendorLeadsFiltersByLabel(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Label: "vendor-a"},
			{ID: 2, Label: "vendor-b"},
		},
	}
	svc := newTestService(repo, nil, newFakeOverlay())

	leads, err := svc.VendorLeads(context.Background(), "vendor-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != 1 {
		t.Fatalf("expected only vendor-a leads, got %v", leads)
	}
}

func TestListVendorsUnionsAndSorts(t *testing.T) {
	repo := &fakeStore{labels: []string{"zeta", "alpha"}}
	shared := &fakeStore{labels: []string{"alpha", "mid"}}
	svc := newTestService(repo, shared, newFakeOverlay())

	labels, err := svc.ListVendors(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(labels) != len(want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, labels)
		}
	}
}

func TestFlaggedLeadsFiltersOnAugmentedFlags(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Validation: "1"},
			{ID: 2, Validation: "1"},
		},
	}
	overlay := newFakeOverlay()
	overlay.overlays[1] = domain.StatusOverlay{LeadID: 1, Duplicate: true}
	overlay.overlays[2] = domain.StatusOverlay{LeadID: 2, Duplicate: true, Booked: true}
	svc := newTestService(repo, nil, overlay)

	leads, err := svc.FlaggedLeads(context.Background(), status.Filter{
		Duplicate: boolPtr(true),
		Booked:    boolPtr(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != 1 {
		t.Fatalf("expected only the unbooked duplicate, got %v", leads)
	}
}

func TestFlaggedLeadsIncludesClassifierInvalids(t *testing.T) {
	// Lead 2 has no overlay document at all but is classifier-invalid; an
	// invalid=true query must surface it.
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Validation: "1"},
			{ID: 2, Phone1: "+12124567890", Validation: domain.ValidationRejected},
		},
		invalidIDs: []int64{2},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	leads, err := svc.FlaggedLeads(context.Background(), status.Filter{Invalid: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != 2 {
		t.Fatalf("expected the classifier-invalid lead, got %v", leads)
	}
}

func TestUpdateLeadNormalizesPhone(t *testing.T) {
	repo := &fakeStore{leads: []domain.Lead{{ID: 1}}}
	svc := newTestService(repo, nil, newFakeOverlay())

	params := repository.UpdateLeadParams{Phone1: "(212) 456-7890"}
	if err := svc.UpdateLead(context.Background(), 1, params, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updatedParams.Phone1 != "+12124567890" {
		t.Fatalf("expected E.164 phone, got %q", repo.updatedParams.Phone1)
	}
}

func TestUpdateLeadUpsertsBookedWhenProvided(t *testing.T) {
	repo := &fakeStore{leads: []domain.Lead{{ID: 1}}}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	if err := svc.UpdateLead(context.Background(), 1, repository.UpdateLeadParams{}, boolPtr(true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !overlay.overlays[1].Booked {
		t.Fatal("expected booked=true upserted alongside the relational update")
	}
}

func TestUpdateLeadSkipsOverlayWhenBookedAbsent(t *testing.T) {
	repo := &fakeStore{leads: []domain.Lead{{ID: 1}}}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	if err := svc.UpdateLead(context.Background(), 1, repository.UpdateLeadParams{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overlay.upserts) != 0 {
		t.Fatal("overlay must not be touched when isBooked is absent")
	}
}

func TestUpdateLeadUnknownID(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil, newFakeOverlay())

	err := svc.UpdateLead(context.Background(), 999, repository.UpdateLeadParams{}, nil)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkDuplicateRecordsStickyDecision(t *testing.T) {
	overlay := newFakeOverlay()
	svc := newTestService(&fakeStore{}, nil, overlay)

	result, err := svc.MarkDuplicate(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Duplicate {
		t.Fatal("displayed duplicate flag must follow the decision")
	}
	if result.UserMarkedDuplicate != domain.OverrideRejected {
		t.Fatal("expected the explicit rejection recorded")
	}

	result, err = svc.MarkDuplicate(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Duplicate || result.UserMarkedDuplicate != domain.OverrideConfirmed {
		t.Fatalf("expected confirmation recorded, got %+v", result)
	}
}
