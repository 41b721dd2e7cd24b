package service

import (
	"context"
	"errors"
	"strings"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
)

// BookingSource supplies opaque note tokens from an external booking export.
// The engine's only obligation per token is an exact note-field lookup and a
// booked=true overlay upsert on match.
type BookingSource interface {
	Tokens(ctx context.Context) ([]string, error)
}

// ImportBooked pulls the current token list from the booking source and
// upserts booked=true on every lead whose notes field exactly matches a
// token. Empty, malformed, and non-matching tokens are skipped silently (no
// partial or fuzzy matching). Per-token store failures are logged and
// skipped; the returned count reflects successful matches only.
func (s *Service) ImportBooked(ctx context.Context, source BookingSource) (int, error) {
	if source == nil {
		return 0, errors.New("no booking source configured")
	}

	tokens, err := source.Tokens(ctx)
	if err != nil {
		return 0, err
	}

	matched := 0
	booked := true
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		id, err := s.repo.FindIDByNote(ctx, token)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.StoreError("lead", "ImportBooked.FindIDByNote", err)
			continue
		}

		if err := s.overlay.Upsert(ctx, id, domain.OverlayPatch{Booked: &booked}); err != nil {
			s.log.StoreError("overlay", "ImportBooked.Upsert", err)
			continue
		}
		matched++
	}

	s.log.Info("booking import complete", "tokens", len(tokens), "matched", matched)
	return matched, nil
}
