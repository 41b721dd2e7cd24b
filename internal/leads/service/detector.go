package service

import (
	"context"
	"fmt"
	"sort"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/phone"
)

// ItemFailure records a single lead whose overlay could not be read or
// written during a detection pass.
type ItemFailure struct {
	LeadID int64
	Err    error
}

// PartialFailureError reports a detection pass that completed but could not
// process every lead. The pass is at-least-effort, not atomic: the marked
// count reflects only successful upserts.
type PartialFailureError struct {
	Marked   int
	Failures []ItemFailure
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("duplicate marking finished with %d failed leads (%d marked)", len(e.Failures), e.Marked)
}

// DetectAndMark scans the lead store for groups of two or more leads sharing
// the same contact phone (restricted to one vendor when scopeLabel is
// non-empty) and upserts duplicate=true on each member's overlay.
//
// A lead whose overlay carries an explicit userMarkedDuplicate=false is
// skipped: that is a human decision and it outranks detection. Any other
// state, including an explicit true, is (re-)marked, which makes the pass
// idempotent. Leads that drop out of a group on a later run are never
// automatically un-marked; stale positives persist until a manual override.
//
// A failure on a single lead's overlay is logged and skipped without
// aborting the batch. The returned count reflects successes only; when any
// per-lead failure occurred the error is a *PartialFailureError.
func (s *Service) DetectAndMark(ctx context.Context, scopeLabel string) (int, error) {
	groups, err := s.repo.FindDuplicateGroups(ctx, scopeLabel)
	if err != nil {
		return 0, err
	}

	ids := collectGroupMembers(groups)
	if len(ids) == 0 {
		return 0, nil
	}

	marked := 0
	var failures []ItemFailure
	markedTrue := true

	for _, id := range ids {
		overlay, ok, err := s.overlay.Get(ctx, id)
		if err != nil {
			s.log.StoreError("overlay", "DetectAndMark.Get", err)
			failures = append(failures, ItemFailure{LeadID: id, Err: err})
			continue
		}
		if ok && overlay.UserMarkedDuplicate == domain.OverrideRejected {
			continue
		}

		if err := s.overlay.Upsert(ctx, id, domain.OverlayPatch{Duplicate: &markedTrue}); err != nil {
			s.log.StoreError("overlay", "DetectAndMark.Upsert", err)
			failures = append(failures, ItemFailure{LeadID: id, Err: err})
			continue
		}
		marked++
	}

	s.log.Info("duplicate detection pass complete",
		"scope", scopeLabel,
		"groups", len(groups),
		"marked", marked,
		"failed", len(failures),
	)

	if len(failures) > 0 {
		return marked, &PartialFailureError{Marked: marked, Failures: failures}
	}
	return marked, nil
}

// collectGroupMembers flattens duplicate groups into a deduplicated, sorted
// id list. Groups whose raw phone keys normalize to the same E.164 number
// are effectively merged by the flattening; a lead is processed once per
// pass no matter how many groups it appears in.
func collectGroupMembers(groups []domain.DuplicateGroup) []int64 {
	merged := make(map[string][]int64)
	for _, group := range groups {
		normKey := phone.NormalizeE164(group.Key)
		merged[normKey] = append(merged[normKey], group.IDs...)
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, members := range merged {
		for _, id := range members {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
