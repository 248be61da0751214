package settlement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresReceiptStore persists purchase receipts in Postgres.
//
// Assumed table: purchase_receipts with
// UNIQUE (buyer_wallet_id, listing_id)
type PostgresReceiptStore struct {
	db *sql.DB
}

func NewPostgresReceiptStore(db *sql.DB) *PostgresReceiptStore {
	return &PostgresReceiptStore{db: db}
}

const selectReceipt = `
SELECT id, listing_id, buyer_wallet_id, seller_wallet_id, price, commission, seller_net, created_at
FROM purchase_receipts`

func (s *PostgresReceiptStore) Create(ctx context.Context, r Receipt) error {
	const q = `
INSERT INTO purchase_receipts (
  id, listing_id, buyer_wallet_id, seller_wallet_id, price, commission, seller_net, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := s.db.ExecContext(ctx, q,
		r.ID, r.ListingID, r.BuyerWalletID, r.SellerWalletID, r.Price, r.Commission, r.SellerNet, r.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyPurchased
		}
		return err
	}
	return nil
}

func (s *PostgresReceiptStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM purchase_receipts WHERE id = $1`, id)
	return err
}

func (s *PostgresReceiptStore) Find(ctx context.Context, buyerWalletID, listingID string) (Receipt, bool, error) {
	r, err := scanReceipt(s.db.QueryRowContext(ctx,
		selectReceipt+` WHERE buyer_wallet_id = $1 AND listing_id = $2`, buyerWalletID, listingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Receipt{}, false, nil
		}
		return Receipt{}, false, err
	}
	return r, true, nil
}

func (s *PostgresReceiptStore) Get(ctx context.Context, id string) (Receipt, error) {
	r, err := scanReceipt(s.db.QueryRowContext(ctx, selectReceipt+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Receipt{}, ErrReceiptNotFound
		}
		return Receipt{}, err
	}
	return r, nil
}

func (s *PostgresReceiptStore) ListByBuyer(ctx context.Context, buyerWalletID string, limit, offset int) ([]Receipt, error) {
	const q = selectReceipt + `
WHERE buyer_wallet_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`
	rows, err := s.db.QueryContext(ctx, q, buyerWalletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (Receipt, error) {
	var r Receipt
	err := row.Scan(
		&r.ID, &r.ListingID, &r.BuyerWalletID, &r.SellerWalletID,
		&r.Price, &r.Commission, &r.SellerNet, &r.CreatedAt,
	)
	if err != nil {
		return Receipt{}, err
	}
	return r, nil
}
