package service

import (
	"context"
	"errors"
	"testing"

	"leadportal_backend/internal/leads/domain"
)

type staticSource struct {
	tokens []string
	err    error
}

func (s staticSource) Tokens(context.Context) ([]string, error) {
	return s.tokens, s.err
}

func TestImportBookedMarksExactNoteMatches(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Notes: "BK-1001"},
			{ID: 2, Notes: "BK-1002"},
		},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	matched, err := svc.ImportBooked(context.Background(), staticSource{tokens: []string{"BK-1001", "BK-9999"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected 1 match, got %d", matched)
	}
	if !overlay.overlays[1].Booked {
		t.Fatal("matched lead must be booked")
	}
	if overlay.overlays[2].Booked {
		t.Fatal("unmatched lead must not be booked")
	}
}

func TestImportBookedRequiresExactMatch(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{{ID: 1, Notes: "BK-1001 extra"}},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	matched, err := svc.ImportBooked(context.Background(), staticSource{tokens: []string{"BK-1001"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != 0 {
		t.Fatalf("partial note match must not count, got %d", matched)
	}
}

func TestImportBookedSkipsEmptyTokens(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{{ID: 1, Notes: "BK-1001"}},
	}
	overlay := newFakeOverlay()
	svc := newTestService(repo, nil, overlay)

	matched, err := svc.ImportBooked(context.Background(), staticSource{tokens: []string{"", "   ", "  BK-1001  "}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected trimmed token to match, got %d", matched)
	}
}

func TestImportBookedContinuesPastOverlayFailures(t *testing.T) {
	repo := &fakeStore{
		leads: []domain.Lead{
			{ID: 1, Notes: "BK-1001"},
			{ID: 2, Notes: "BK-1002"},
		},
	}
	overlay := newFakeOverlay()
	overlay.upsertErr[1] = errors.New("connection reset")
	svc := newTestService(repo, nil, overlay)

	matched, err := svc.ImportBooked(context.Background(), staticSource{tokens: []string{"BK-1001", "BK-1002"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected 1 match after one failure, got %d", matched)
	}
	if !overlay.overlays[2].Booked {
		t.Fatal("lead after the failed one must still be processed")
	}
}

func TestImportBookedSourceFailure(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil, newFakeOverlay())

	_, err := svc.ImportBooked(context.Background(), staticSource{err: errors.New("object not found")})
	if err == nil {
		t.Fatal("expected error when the booking source is unreadable")
	}
}

func TestImportBookedNilSource(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil, newFakeOverlay())

	if _, err := svc.ImportBooked(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}
