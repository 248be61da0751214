package listings

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore persists listings in Postgres.
//
// Assumed table: listings.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectListing = `
SELECT id, seller_wallet_id, title, price, final_price, commission_bps, discount_bps,
       status, checkout_url, checkout_provider, reject_reason, admin_notes,
       created_at, updated_at
FROM listings`

func (s *PostgresStore) Create(ctx context.Context, l Listing) error {
	const q = `
INSERT INTO listings (
  id, seller_wallet_id, title, price, final_price, commission_bps, discount_bps,
  status, checkout_url, checkout_provider, reject_reason, admin_notes,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`
	_, err := s.db.ExecContext(ctx, q,
		l.ID, l.SellerWalletID, l.Title, l.Price, l.FinalPrice, l.CommissionBps, l.DiscountBps,
		l.Status, l.CheckoutURL, l.CheckoutProvider, l.RejectReason, l.AdminNotes,
		l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Listing, error) {
	l, err := scanListing(s.db.QueryRowContext(ctx, selectListing+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, err
	}
	return l, nil
}

func (s *PostgresStore) Decide(ctx context.Context, id string, d Decision) (Listing, error) {
	const q = `
UPDATE listings
SET status = $2, checkout_url = $3, checkout_provider = $4, final_price = $5,
    admin_notes = $6, reject_reason = $7, updated_at = $8
WHERE id = $1 AND status = $9
RETURNING id, seller_wallet_id, title, price, final_price, commission_bps, discount_bps,
          status, checkout_url, checkout_provider, reject_reason, admin_notes,
          created_at, updated_at
`
	l, err := scanListing(s.db.QueryRowContext(ctx, q,
		id, d.Status, d.CheckoutURL, d.CheckoutProvider, d.FinalPrice,
		d.AdminNotes, d.RejectReason, d.DecidedAt, StatusPending,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := s.Get(ctx, id); getErr != nil {
				return Listing{}, getErr
			}
			return Listing{}, ErrInvalidTransition
		}
		return Listing{}, err
	}
	return l, nil
}

func (s *PostgresStore) ListBySeller(ctx context.Context, sellerWalletID string, limit, offset int) ([]Listing, error) {
	const q = selectListing + `
WHERE seller_wallet_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`
	rows, err := s.db.QueryContext(ctx, q, sellerWalletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings WHERE status = $1`, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID, &l.SellerWalletID, &l.Title, &l.Price, &l.FinalPrice, &l.CommissionBps, &l.DiscountBps,
		&l.Status, &l.CheckoutURL, &l.CheckoutProvider, &l.RejectReason, &l.AdminNotes,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Listing{}, err
	}
	return l, nil
}
