// Package repository implements the lead store adapter against Postgres.
package repository

import (
	"context"
	"errors"
	"net"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a referenced lead id does not exist.
var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, timestamp, label,
	COALESCE(firstname, ''), COALESCE(email, ''), COALESCE(phone1, ''),
	COALESCE(ozip, ''), COALESCE(dzip, ''), COALESCE(ocity, ''), COALESCE(ostate, ''),
	COALESCE(dcity, ''), COALESCE(dstate, ''), COALESCE(movesize, ''), COALESCE(movedte, ''),
	COALESCE(conversion, ''), COALESCE(validation, ''), COALESCE(notes, ''), COALESCE(moverref, ''),
	sent_to_gronat, sent_to_sheets`

// Repository is the pgx-backed lead store adapter. Each call runs under a
// bounded timeout; connection and timeout failures surface as store
// unavailability rather than internal errors.
type Repository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// New creates a repository over the given pool. callTimeout bounds every
// store call; zero means 10s.
func New(pool *pgxpool.Pool, callTimeout time.Duration) *Repository {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Repository{pool: pool, timeout: callTimeout}
}

// Ping verifies store connectivity, for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) FindByDate(ctx context.Context, day time.Time) ([]domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM lead
		WHERE timestamp = $1
		ORDER BY id ASC
	`, day.Format("2006-01-02"))
	if err != nil {
		return nil, wrapStoreErr("FindByDate", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *Repository) FindByLabel(ctx context.Context, label string) ([]domain.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM lead
		WHERE label = $1
		ORDER BY id ASC
	`, label)
	if err != nil {
		return nil, wrapStoreErr("FindByLabel", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *Repository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM lead
		WHERE id = ANY($1::int[])
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, wrapStoreErr("FindByIDs", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *Repository) FindInvalidWithContact(ctx context.Context) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM lead
		WHERE validation = $1 AND phone1 IS NOT NULL AND phone1 <> ''
	`, domain.ValidationRejected)
	if err != nil {
		return nil, wrapStoreErr("FindInvalidWithContact", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *Repository) FindDuplicateGroups(ctx context.Context, scopeLabel string) ([]domain.DuplicateGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT phone1, array_agg(id ORDER BY id)
		FROM lead
		WHERE phone1 IS NOT NULL AND phone1 <> ''
		GROUP BY phone1
		HAVING COUNT(*) >= 2
	`
	args := []interface{}{}
	if scopeLabel != "" {
		query = `
			SELECT phone1, array_agg(id ORDER BY id)
			FROM lead
			WHERE phone1 IS NOT NULL AND phone1 <> '' AND label = $1
			GROUP BY phone1
			HAVING COUNT(*) >= 2
		`
		args = append(args, scopeLabel)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("FindDuplicateGroups", err)
	}
	defer rows.Close()

	groups := make([]domain.DuplicateGroup, 0)
	for rows.Next() {
		var group domain.DuplicateGroup
		if err := rows.Scan(&group.Key, &group.IDs); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

func (r *Repository) FindIDByNote(ctx context.Context, note string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM lead WHERE notes = $1 ORDER BY id ASC LIMIT 1
	`, note).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, wrapStoreErr("FindIDByNote", err)
	}
	return id, nil
}

func (r *Repository) ListLabels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT DISTINCT label FROM lead ORDER BY label ASC`)
	if err != nil {
		return nil, wrapStoreErr("ListLabels", err)
	}
	defer rows.Close()

	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// UpdateLeadParams carries the full writable field set of a lead. Fields not
// understood by the core are still part of the update surface so they pass
// through unchanged.
type UpdateLeadParams struct {
	Timestamp  time.Time
	Label      string
	Firstname  string
	Email      string
	Phone1     string
	Ozip       string
	Dzip       string
	Ocity      string
	Ostate     string
	Dcity      string
	Dstate     string
	Movesize   string
	Movedte    string
	Conversion string
	Validation string
	Notes      string
	Moverref   string
	SentGronat bool
	SentSheets bool
}

func (r *Repository) Update(ctx context.Context, id int64, params UpdateLeadParams) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE lead SET
			timestamp = $1, label = $2, firstname = $3, email = $4, phone1 = $5,
			ozip = $6, dzip = $7, ocity = $8, ostate = $9, dcity = $10, dstate = $11,
			movesize = $12, movedte = $13, conversion = $14, validation = $15,
			notes = $16, moverref = $17, sent_to_gronat = $18, sent_to_sheets = $19
		WHERE id = $20
	`,
		params.Timestamp.Format("2006-01-02"), params.Label, params.Firstname, params.Email, params.Phone1,
		params.Ozip, params.Dzip, params.Ocity, params.Ostate, params.Dcity, params.Dstate,
		params.Movesize, params.Movedte, params.Conversion, params.Validation,
		params.Notes, params.Moverref, params.SentGronat, params.SentSheets,
		id,
	)
	if err != nil {
		return wrapStoreErr("Update", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLeads(rows pgx.Rows) ([]domain.Lead, error) {
	leads := make([]domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(
			&lead.ID, &lead.Timestamp, &lead.Label,
			&lead.Firstname, &lead.Email, &lead.Phone1,
			&lead.Ozip, &lead.Dzip, &lead.Ocity, &lead.Ostate,
			&lead.Dcity, &lead.Dstate, &lead.Movesize, &lead.Movedte,
			&lead.Conversion, &lead.Validation, &lead.Notes, &lead.Moverref,
			&lead.SentGronat, &lead.SentSheets,
		); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// wrapStoreErr classifies connection and timeout failures as store
// unavailability so callers can distinguish them from data errors.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindUnavailable, "lead store unavailable", err).WithOp(op)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperr.Wrap(apperr.KindUnavailable, "lead store unavailable", err).WithOp(op)
	}
	return apperr.Wrap(apperr.KindInternal, "lead store query failed", err).WithOp(op)
}

// Compile-time check that Repository satisfies the adapter contract.
var _ Store = (*Repository)(nil)
