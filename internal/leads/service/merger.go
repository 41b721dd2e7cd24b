package service

import (
	"context"

	"leadportal_backend/internal/leads/domain"

	"golang.org/x/sync/errgroup"
)

// ListInvalidIDs returns the ids of every lead whose validation code signals
// rejection and whose contact phone is non-empty, across both lead
// databases. Leads with an empty contact are out of the pipeline and never
// classified invalid. Pure read, no writes.
func (s *Service) ListInvalidIDs(ctx context.Context) (map[int64]struct{}, error) {
	if s.shared == nil {
		ids, err := s.repo.FindInvalidWithContact(ctx)
		if err != nil {
			return nil, err
		}
		return toIDSet(ids), nil
	}

	var main, secondary []int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.repo.FindInvalidWithContact(gctx)
		main = ids
		return err
	})
	g.Go(func() error {
		ids, err := s.shared.FindInvalidWithContact(gctx)
		secondary = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return toIDSet(append(main, secondary...)), nil
}

// Augment joins the given leads with their overlay flags. Overlays are
// fetched in one batch for exactly the ids present; the classifier runs on
// the rows already in hand (rejected validation code plus a usable contact),
// so no extra store round trip is needed.
//
// Per lead: isDuplicate and isBooked mirror the overlay (false when absent);
// invalid is true when the classifier flags the lead OR the overlay carries
// an explicit invalid=true. An overlay invalid=true always wins even when
// the relational validation code says valid; there is no symmetric override
// forcing invalid=false short of correcting the lead's validation code. The
// flag is a display aid, not a hard gate.
func (s *Service) Augment(ctx context.Context, leads []domain.Lead, includeInvalid bool) ([]domain.AugmentedLead, error) {
	ids := make([]int64, 0, len(leads))
	for _, lead := range leads {
		ids = append(ids, lead.ID)
	}

	overlays, err := s.overlay.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	augmented := make([]domain.AugmentedLead, 0, len(leads))
	for _, lead := range leads {
		row := domain.AugmentedLead{Lead: lead}
		if overlay, ok := overlays[lead.ID]; ok {
			row.IsDuplicate = overlay.Duplicate
			row.IsBooked = overlay.Booked
			row.Invalid = overlay.Invalid
		}
		if includeInvalid && lead.IsRejected() && lead.HasContact() {
			row.Invalid = true
		}
		augmented = append(augmented, row)
	}

	return augmented, nil
}

func toIDSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
