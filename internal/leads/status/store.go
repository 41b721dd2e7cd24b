// Package status implements the status overlay store on Redis. Each lead has
// at most one overlay hash; the persisted field names (duplicate, booked,
// invalid, userMarkedDuplicate) are the wire contract consumed by the
// admin and vendor screens and must not be renamed.
//
// Upserts write only the fields present in the patch (HSET), so concurrent
// writers touching different fields of the same overlay never lose each
// other's updates: last writer wins per field, not per document. Overlay
// documents are created lazily on first write and never deleted here;
// overlays for leads that no longer exist are inert.
package status

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/apperr"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "lead:status:"

	fieldDuplicate           = "duplicate"
	fieldBooked              = "booked"
	fieldInvalid             = "invalid"
	fieldUserMarkedDuplicate = "userMarkedDuplicate"

	scanBatchSize = 200
)

// Filter selects overlays by flag values; nil fields match anything.
type Filter struct {
	Duplicate *bool
	Booked    *bool
	Invalid   *bool
}

// Store is the Redis-backed overlay store.
type Store struct {
	rdb     *redis.Client
	timeout time.Duration
}

// New creates a store over the given client. callTimeout bounds every store
// call; zero means 10s.
func New(rdb *redis.Client, callTimeout time.Duration) *Store {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Store{rdb: rdb, timeout: callTimeout}
}

// Get returns the overlay for a lead. ok is false when no overlay document
// exists yet.
func (s *Store) Get(ctx context.Context, leadID int64) (domain.StatusOverlay, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fields, err := s.rdb.HGetAll(ctx, key(leadID)).Result()
	if err != nil {
		return domain.StatusOverlay{}, false, wrapStoreErr("Get", err)
	}
	if len(fields) == 0 {
		return domain.StatusOverlay{}, false, nil
	}

	return decode(leadID, fields), true, nil
}

// GetMany returns overlays for the given ids in a single pipelined round
// trip. Leads without an overlay document are absent from the result.
func (s *Store) GetMany(ctx context.Context, leadIDs []int64) (map[int64]domain.StatusOverlay, error) {
	result := make(map[int64]domain.StatusOverlay, len(leadIDs))
	if len(leadIDs) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pipe := s.rdb.Pipeline()
	cmds := make(map[int64]*redis.MapStringStringCmd, len(leadIDs))
	for _, id := range leadIDs {
		cmds[id] = pipe.HGetAll(ctx, key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, wrapStoreErr("GetMany", err)
	}

	for id, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		result[id] = decode(id, fields)
	}

	return result, nil
}

// ListFlagged scans every overlay document and returns those matching the
// filter. The working set is bounded (one overlay per lead), so a SCAN plus
// pipelined reads is sufficient.
func (s *Store) ListFlagged(ctx context.Context, filter Filter) ([]domain.StatusOverlay, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matched := make([]domain.StatusOverlay, 0)
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", scanBatchSize).Iterator()

	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		pipe := s.rdb.Pipeline()
		cmds := make([]*redis.MapStringStringCmd, len(batch))
		for i, k := range batch {
			cmds[i] = pipe.HGetAll(ctx, k)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return wrapStoreErr("ListFlagged", err)
		}
		for i, cmd := range cmds {
			id, ok := leadIDFromKey(batch[i])
			if !ok {
				continue
			}
			fields := cmd.Val()
			if len(fields) == 0 {
				continue
			}
			overlay := decode(id, fields)
			if matches(overlay, filter) {
				matched = append(matched, overlay)
			}
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStoreErr("ListFlagged", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return matched, nil
}

// Upsert merges the patch into the lead's overlay, creating the document if
// it does not exist. Only the fields present in the patch are written.
func (s *Store) Upsert(ctx context.Context, leadID int64, patch domain.OverlayPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	values := make([]interface{}, 0, 8)
	if patch.Duplicate != nil {
		values = append(values, fieldDuplicate, strconv.FormatBool(*patch.Duplicate))
	}
	if patch.Booked != nil {
		values = append(values, fieldBooked, strconv.FormatBool(*patch.Booked))
	}
	if patch.Invalid != nil {
		values = append(values, fieldInvalid, strconv.FormatBool(*patch.Invalid))
	}
	if patch.UserMarkedDuplicate != nil {
		values = append(values, fieldUserMarkedDuplicate, strconv.FormatBool(*patch.UserMarkedDuplicate))
	}

	if err := s.rdb.HSet(ctx, key(leadID), values...).Err(); err != nil {
		return wrapStoreErr("Upsert", err)
	}
	return nil
}

func key(leadID int64) string {
	return keyPrefix + strconv.FormatInt(leadID, 10)
}

func leadIDFromKey(k string) (int64, bool) {
	raw := strings.TrimPrefix(k, keyPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func decode(leadID int64, fields map[string]string) domain.StatusOverlay {
	overlay := domain.StatusOverlay{
		LeadID:    leadID,
		Duplicate: fields[fieldDuplicate] == "true",
		Booked:    fields[fieldBooked] == "true",
		Invalid:   fields[fieldInvalid] == "true",
	}

	if raw, ok := fields[fieldUserMarkedDuplicate]; ok {
		overlay.UserMarkedDuplicate = domain.OverrideFromBool(raw == "true")
	}

	return overlay
}

func matches(overlay domain.StatusOverlay, filter Filter) bool {
	if filter.Duplicate != nil && overlay.Duplicate != *filter.Duplicate {
		return false
	}
	if filter.Booked != nil && overlay.Booked != *filter.Booked {
		return false
	}
	if filter.Invalid != nil && overlay.Invalid != *filter.Invalid {
		return false
	}
	return true
}

// wrapStoreErr classifies connection and timeout failures as store
// unavailability.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindUnavailable, "overlay store unavailable", err).WithOp(op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperr.Wrap(apperr.KindUnavailable, "overlay store unavailable", err).WithOp(op)
	}
	return apperr.Wrap(apperr.KindInternal, "overlay store operation failed", err).WithOp(op)
}
