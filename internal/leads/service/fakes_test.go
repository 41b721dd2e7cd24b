package service

import (
	"context"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/status"
	"leadportal_backend/platform/logger"
)

func testLogger() *logger.Logger {
	return logger.New("test")
}

func boolPtr(v bool) *bool { return &v }

// fakeStore is an in-memory repository.Store.
type fakeStore struct {
	leads      []domain.Lead
	invalidIDs []int64
	groups     []domain.DuplicateGroup
	labels     []string

	updatedID     int64
	updatedParams repository.UpdateLeadParams
	updateErr     error
}

func (f *fakeStore) FindByDate(_ context.Context, day time.Time) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if sameDay(lead.Timestamp, day) {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByLabel(_ context.Context, label string) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.Label == label {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByIDs(_ context.Context, ids []int64) ([]domain.Lead, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if _, ok := want[lead.ID]; ok {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) FindInvalidWithContact(context.Context) ([]int64, error) {
	return f.invalidIDs, nil
}

func (f *fakeStore) FindDuplicateGroups(_ context.Context, scopeLabel string) ([]domain.DuplicateGroup, error) {
	if scopeLabel == "" {
		return f.groups, nil
	}

	labelByID := make(map[int64]string, len(f.leads))
	for _, lead := range f.leads {
		labelByID[lead.ID] = lead.Label
	}

	scoped := make([]domain.DuplicateGroup, 0)
	for _, group := range f.groups {
		ids := make([]int64, 0, len(group.IDs))
		for _, id := range group.IDs {
			if labelByID[id] == scopeLabel {
				ids = append(ids, id)
			}
		}
		if len(ids) >= 2 {
			scoped = append(scoped, domain.DuplicateGroup{Key: group.Key, IDs: ids})
		}
	}
	return scoped, nil
}

func (f *fakeStore) FindIDByNote(_ context.Context, note string) (int64, error) {
	for _, lead := range f.leads {
		if lead.Notes == note {
			return lead.ID, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (f *fakeStore) ListLabels(context.Context) ([]string, error) {
	return f.labels, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, params repository.UpdateLeadParams) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, lead := range f.leads {
		if lead.ID == id {
			f.updatedID = id
			f.updatedParams = params
			return nil
		}
	}
	return repository.ErrNotFound
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// fakeOverlay is an in-memory OverlayStore with per-lead error injection.
type fakeOverlay struct {
	overlays map[int64]domain.StatusOverlay

	getErr    map[int64]error
	upsertErr map[int64]error

	upserts []int64
}

func newFakeOverlay() *fakeOverlay {
	return &fakeOverlay{
		overlays:  make(map[int64]domain.StatusOverlay),
		getErr:    make(map[int64]error),
		upsertErr: make(map[int64]error),
	}
}

func (f *fakeOverlay) Get(_ context.Context, leadID int64) (domain.StatusOverlay, bool, error) {
	if err := f.getErr[leadID]; err != nil {
		return domain.StatusOverlay{}, false, err
	}
	overlay, ok := f.overlays[leadID]
	return overlay, ok, nil
}

func (f *fakeOverlay) GetMany(_ context.Context, leadIDs []int64) (map[int64]domain.StatusOverlay, error) {
	out := make(map[int64]domain.StatusOverlay, len(leadIDs))
	for _, id := range leadIDs {
		if overlay, ok := f.overlays[id]; ok {
			out[id] = overlay
		}
	}
	return out, nil
}

func (f *fakeOverlay) ListFlagged(_ context.Context, filter status.Filter) ([]domain.StatusOverlay, error) {
	out := make([]domain.StatusOverlay, 0)
	for _, overlay := range f.overlays {
		if filter.Duplicate != nil && overlay.Duplicate != *filter.Duplicate {
			continue
		}
		if filter.Booked != nil && overlay.Booked != *filter.Booked {
			continue
		}
		if filter.Invalid != nil && overlay.Invalid != *filter.Invalid {
			continue
		}
		out = append(out, overlay)
	}
	return out, nil
}

func (f *fakeOverlay) Upsert(_ context.Context, leadID int64, patch domain.OverlayPatch) error {
	if err := f.upsertErr[leadID]; err != nil {
		return err
	}

	overlay := f.overlays[leadID]
	overlay.LeadID = leadID
	if patch.Duplicate != nil {
		overlay.Duplicate = *patch.Duplicate
	}
	if patch.Booked != nil {
		overlay.Booked = *patch.Booked
	}
	if patch.Invalid != nil {
		overlay.Invalid = *patch.Invalid
	}
	if patch.UserMarkedDuplicate != nil {
		overlay.UserMarkedDuplicate = domain.OverrideFromBool(*patch.UserMarkedDuplicate)
	}
	f.overlays[leadID] = overlay
	f.upserts = append(f.upserts, leadID)
	return nil
}

func newTestService(repo repository.Store, shared repository.Store, overlay OverlayStore) *Service {
	return New(repo, shared, overlay, testLogger())
}
