package requests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresStore persists requests in Postgres.
//
// Assumed table: money_requests, with payment_details stored as JSONB.
// The compare-and-swap in Transition is a conditional UPDATE, which is what
// keeps retried admin transitions from double-applying.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectRequest = `
SELECT id, kind, wallet_id, amount, fee, net_amount, method, payment_details,
       external_reference, status, admin_notes, reject_reason, created_at, decided_at
FROM money_requests`

func (s *PostgresStore) Create(ctx context.Context, r Request) error {
	details, err := json.Marshal(r.PaymentDetails)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO money_requests (
  id, kind, wallet_id, amount, fee, net_amount, method, payment_details,
  external_reference, status, admin_notes, reject_reason, created_at, decided_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`
	_, err = s.db.ExecContext(ctx, q,
		r.ID, r.Kind, r.WalletID, r.Amount, r.Fee, r.NetAmount, r.Method, details,
		r.ExternalReference, r.Status, r.AdminNotes, r.RejectReason, r.CreatedAt, r.DecidedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Request, error) {
	return scanRequest(s.db.QueryRowContext(ctx, selectRequest+` WHERE id = $1`, id))
}

func (s *PostgresStore) Transition(ctx context.Context, id string, from, to Status, d Decision) (Request, error) {
	const q = `
UPDATE money_requests
SET status = $3,
    admin_notes = CASE WHEN $4 <> '' THEN $4 ELSE admin_notes END,
    reject_reason = CASE WHEN $5 <> '' THEN $5 ELSE reject_reason END,
    decided_at = $6
WHERE id = $1 AND status = $2
RETURNING id, kind, wallet_id, amount, fee, net_amount, method, payment_details,
          external_reference, status, admin_notes, reject_reason, created_at, decided_at
`
	r, err := scanRequestRow(s.db.QueryRowContext(ctx, q, id, from, to, d.AdminNotes, d.RejectReason, nullTime(d)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish unknown id from a lost CAS.
			if _, getErr := s.Get(ctx, id); getErr != nil {
				return Request{}, getErr
			}
			return Request{}, ErrInvalidTransition
		}
		return Request{}, err
	}
	return r, nil
}

func (s *PostgresStore) ListByWallet(ctx context.Context, walletID string, kind Kind, limit, offset int) ([]Request, error) {
	q := selectRequest + ` WHERE wallet_id = $1`
	args := []any{walletID}
	if kind != "" {
		q += ` AND kind = $2`
		args = append(args, kind)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	args = append(args, limit, offset)
	switch len(args) {
	case 3:
		q += ` LIMIT $2 OFFSET $3`
	default:
		q += ` LIMIT $3 OFFSET $4`
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		r, err := scanRequestRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PendingSummary(ctx context.Context, walletID string, kind Kind) (int, int64, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(amount), 0)
FROM money_requests
WHERE wallet_id = $1 AND kind = $2 AND status = $3
`
	var count int
	var total int64
	if err := s.db.QueryRowContext(ctx, q, walletID, kind, StatusPending).Scan(&count, &total); err != nil {
		return 0, 0, err
	}
	return count, total, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, kind Kind, status Status) (int, error) {
	const q = `SELECT COUNT(*) FROM money_requests WHERE kind = $1 AND status = $2`
	var count int
	if err := s.db.QueryRowContext(ctx, q, kind, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	r, err := scanRequestRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	return r, nil
}

func scanRequestRow(row rowScanner) (Request, error) {
	var r Request
	var details []byte
	var decidedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.Kind, &r.WalletID, &r.Amount, &r.Fee, &r.NetAmount, &r.Method, &details,
		&r.ExternalReference, &r.Status, &r.AdminNotes, &r.RejectReason, &r.CreatedAt, &decidedAt,
	)
	if err != nil {
		return Request{}, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &r.PaymentDetails); err != nil {
			return Request{}, err
		}
	}
	if decidedAt.Valid {
		at := decidedAt.Time
		r.DecidedAt = &at
	}
	return r, nil
}

func nullTime(d Decision) any {
	if d.DecidedAt.IsZero() {
		return nil
	}
	return d.DecidedAt
}
