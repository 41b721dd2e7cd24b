// Package service implements the lead status engine: duplicate detection,
// invalid classification, overlay merging, and the consumer-facing read and
// update operations composed from them.
//
// The relational lead store and the overlay store are independently owned and
// not transactionally linked. A crash between a relational write and the
// paired overlay write leaves a detectable inconsistency; readers treat a
// missing overlay as "no override", which is a safe default, so the
// inconsistency is accepted rather than solved with cross-store transactions.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/status"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// Scope selects which lead database a today's-leads read targets.
type Scope string

const (
	// ScopeExclusive reads the primary lead database.
	ScopeExclusive Scope = "exclusive"
	// ScopeShared reads the secondary provider database.
	ScopeShared Scope = "shared"
	// ScopeCombined reads both and concatenates.
	ScopeCombined Scope = "combined"
)

// OverlayStore is the status overlay contract the engine depends on.
// *status.Store satisfies it; tests substitute fakes.
type OverlayStore interface {
	Get(ctx context.Context, leadID int64) (domain.StatusOverlay, bool, error)
	GetMany(ctx context.Context, leadIDs []int64) (map[int64]domain.StatusOverlay, error)
	ListFlagged(ctx context.Context, filter status.Filter) ([]domain.StatusOverlay, error)
	Upsert(ctx context.Context, leadID int64, patch domain.OverlayPatch) error
}

// Service is the lead status engine.
type Service struct {
	repo    repository.Store
	shared  repository.Store // nil when no shared database is configured
	overlay OverlayStore
	log     *logger.Logger
	now     func() time.Time
}

// New creates the engine. shared may be nil.
func New(repo repository.Store, shared repository.Store, overlay OverlayStore, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		shared:  shared,
		overlay: overlay,
		log:     log,
		now:     time.Now,
	}
}

// TodaysLeads returns today's augmented leads for the requested scope.
func (s *Service) TodaysLeads(ctx context.Context, scope Scope) ([]domain.AugmentedLead, error) {
	today := s.now()

	var leads []domain.Lead
	switch scope {
	case ScopeExclusive, "":
		found, err := s.repo.FindByDate(ctx, today)
		if err != nil {
			return nil, err
		}
		leads = found
	case ScopeShared:
		if s.shared == nil {
			return nil, apperr.BadRequest("shared lead database is not configured")
		}
		found, err := s.shared.FindByDate(ctx, today)
		if err != nil {
			return nil, err
		}
		leads = found
	case ScopeCombined:
		if s.shared == nil {
			found, err := s.repo.FindByDate(ctx, today)
			if err != nil {
				return nil, err
			}
			leads = found
			break
		}
		var exclusive, sharedLeads []domain.Lead
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			found, err := s.repo.FindByDate(gctx, today)
			exclusive = found
			return err
		})
		g.Go(func() error {
			found, err := s.shared.FindByDate(gctx, today)
			sharedLeads = found
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		leads = append(exclusive, sharedLeads...)
	default:
		return nil, apperr.BadRequest("unknown scope")
	}

	return s.Augment(ctx, leads, true)
}

// VendorLeads returns the augmented leads filed under the given vendor label.
func (s *Service) VendorLeads(ctx context.Context, label string) ([]domain.AugmentedLead, error) {
	leads, err := s.repo.FindByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	return s.Augment(ctx, leads, true)
}

// ListVendors returns the distinct vendor labels across both lead databases.
func (s *Service) ListVendors(ctx context.Context) ([]string, error) {
	if s.shared == nil {
		return s.repo.ListLabels(ctx)
	}

	var main, secondary []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		labels, err := s.repo.ListLabels(gctx)
		main = labels
		return err
	})
	g.Go(func() error {
		labels, err := s.shared.ListLabels(gctx)
		secondary = labels
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(main)+len(secondary))
	merged := make([]string, 0, len(main)+len(secondary))
	for _, label := range append(main, secondary...) {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		merged = append(merged, label)
	}
	sort.Strings(merged)

	return merged, nil
}

// FlaggedLeads returns augmented leads whose flags match the filter. The
// candidate set is overlay-driven; when invalid=true is requested, leads
// flagged by the automated classifier are included as well even if their
// overlay carries no invalid override.
func (s *Service) FlaggedLeads(ctx context.Context, filter status.Filter) ([]domain.AugmentedLead, error) {
	overlayFilter := status.Filter{Duplicate: filter.Duplicate, Booked: filter.Booked}
	overlays, err := s.overlay.ListFlagged(ctx, overlayFilter)
	if err != nil {
		return nil, err
	}

	candidates := make(map[int64]struct{}, len(overlays))
	for _, overlay := range overlays {
		candidates[overlay.LeadID] = struct{}{}
	}

	if filter.Invalid != nil && *filter.Invalid {
		invalidIDs, err := s.ListInvalidIDs(ctx)
		if err != nil {
			return nil, err
		}
		for id := range invalidIDs {
			candidates[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	leads, err := s.findAcrossPools(ctx, ids)
	if err != nil {
		return nil, err
	}

	augmented, err := s.Augment(ctx, leads, true)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.AugmentedLead, 0, len(augmented))
	for _, lead := range augmented {
		if filter.Duplicate != nil && lead.IsDuplicate != *filter.Duplicate {
			continue
		}
		if filter.Booked != nil && lead.IsBooked != *filter.Booked {
			continue
		}
		if filter.Invalid != nil && lead.Invalid != *filter.Invalid {
			continue
		}
		filtered = append(filtered, lead)
	}

	return filtered, nil
}

// UpdateLead performs the relational update and, when isBooked was provided,
// the overlay booked upsert. The two writes are not atomic across stores; if
// the overlay write fails after the relational write succeeded, the error is
// surfaced and the relational change stands.
func (s *Service) UpdateLead(ctx context.Context, id int64, params repository.UpdateLeadParams, isBooked *bool) error {
	params.Phone1 = phone.NormalizeE164(params.Phone1)

	if err := s.repo.Update(ctx, id, params); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}

	if isBooked == nil {
		return nil
	}

	if err := s.overlay.Upsert(ctx, id, domain.OverlayPatch{Booked: isBooked}); err != nil {
		s.log.StoreError("overlay", "UpdateLead", err)
		return err
	}
	return nil
}

// MarkDuplicate records an explicit user decision on a lead's duplicate
// status and synchronizes the displayed duplicate flag with it. The decision
// is sticky: the automated detector will never override an explicit false.
func (s *Service) MarkDuplicate(ctx context.Context, id int64, isDuplicate bool) (domain.StatusOverlay, error) {
	patch := domain.OverlayPatch{
		Duplicate:           &isDuplicate,
		UserMarkedDuplicate: &isDuplicate,
	}
	if err := s.overlay.Upsert(ctx, id, patch); err != nil {
		return domain.StatusOverlay{}, err
	}

	overlay, _, err := s.overlay.Get(ctx, id)
	if err != nil {
		return domain.StatusOverlay{}, err
	}
	return overlay, nil
}

// findAcrossPools fetches leads by id from the primary database, falling back
// to the shared database for ids the primary does not know.
func (s *Service) findAcrossPools(ctx context.Context, ids []int64) ([]domain.Lead, error) {
	leads, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if s.shared == nil || len(leads) == len(ids) {
		return leads, nil
	}

	found := make(map[int64]struct{}, len(leads))
	for _, lead := range leads {
		found[lead.ID] = struct{}{}
	}
	missing := make([]int64, 0, len(ids)-len(leads))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	rest, err := s.shared.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	return append(leads, rest...), nil
}
