package repository

import (
	"context"
	"time"

	"leadportal_backend/internal/leads/domain"
)

// Store is the lead store adapter contract. It exposes read access to the
// authoritative lead records plus a single scoped update operation, and
// carries no business logic.
type Store interface {
	// FindByDate returns every lead ingested on the given calendar day.
	FindByDate(ctx context.Context, day time.Time) ([]domain.Lead, error)
	// FindByLabel returns every lead filed under the given vendor label.
	FindByLabel(ctx context.Context, label string) ([]domain.Lead, error)
	// FindByIDs returns the leads matching the given ids; missing ids are
	// silently absent from the result.
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Lead, error)
	// FindInvalidWithContact returns ids of leads whose validation code
	// signals rejection and whose contact phone is non-empty.
	FindInvalidWithContact(ctx context.Context) ([]int64, error)
	// FindDuplicateGroups returns groups of two or more leads sharing the
	// same phone1. A non-empty scopeLabel restricts grouping to that vendor.
	FindDuplicateGroups(ctx context.Context, scopeLabel string) ([]domain.DuplicateGroup, error)
	// FindIDByNote returns the id of the lead whose notes field exactly
	// matches the given token, or ErrNotFound.
	FindIDByNote(ctx context.Context, note string) (int64, error)
	// ListLabels returns the distinct vendor labels present in the store.
	ListLabels(ctx context.Context) ([]string, error)
	// Update performs a full-field scoped update of a lead. A missing id
	// yields ErrNotFound (zero rows affected), not a store failure.
	Update(ctx context.Context, id int64, params UpdateLeadParams) error
}
