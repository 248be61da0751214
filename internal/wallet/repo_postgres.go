package wallet

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"marketplace-ledger/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore persists wallets and their ledger in Postgres.
//
// Assumed tables:
// - wallets
// - wallet_ledger (immutable append-only; INSERT-only policy recommended)
// with a partial unique index enforcing idempotency:
// UNIQUE (wallet_id, idempotency_key) WHERE idempotency_key <> ''
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateWallet(ctx context.Context, w Wallet) error {
	const q = `
INSERT INTO wallets (
  id, owner_id, balance, total_deposited, total_spent, total_withdrawn,
  is_frozen, frozen_reason, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := s.db.ExecContext(ctx, q,
		w.ID, w.OwnerID, w.Balance, w.TotalDeposited, w.TotalSpent, w.TotalWithdrawn,
		w.IsFrozen, w.FrozenReason, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetWallet(ctx context.Context, id string) (Wallet, error) {
	return scanWallet(s.db.QueryRowContext(ctx, selectWallet+` WHERE id = $1`, id))
}

func (s *PostgresStore) GetWalletByOwner(ctx context.Context, ownerID string) (Wallet, bool, error) {
	w, err := scanWallet(s.db.QueryRowContext(ctx, selectWallet+` WHERE owner_id = $1`, ownerID))
	if errors.Is(err, ErrNotFound) {
		return Wallet{}, false, nil
	}
	if err != nil {
		return Wallet{}, false, err
	}
	return w, true, nil
}

func (s *PostgresStore) Apply(ctx context.Context, ids []string, fn func(tx Tx) error) error {
	// Lock in ascending id order so overlapping operations cannot deadlock.
	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for _, id := range ordered {
			if _, err := lockWallet(ctx, tx, id); err != nil {
				return err
			}
		}
		return fn(&pgTx{ctx: ctx, tx: tx})
	})
}

func (s *PostgresStore) History(ctx context.Context, walletID string, limit, offset int) ([]LedgerEntry, error) {
	const q = `
SELECT id, wallet_id, type, amount, balance_before, balance_after,
       description, reference_type, reference_id, idempotency_key, created_at
FROM wallet_ledger
WHERE wallet_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`
	rows, err := s.db.QueryContext(ctx, q, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.WalletID, &e.Type, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.Description, &e.ReferenceType, &e.ReferenceID, &e.IdempotencyKey, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type pgTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *pgTx) Wallet(id string) (Wallet, error) {
	// The row is already locked by Apply; a plain read sees the locked state.
	return scanWallet(t.tx.QueryRowContext(t.ctx, selectWallet+` WHERE id = $1`, id))
}

func (t *pgTx) UpdateWallet(w Wallet) error {
	const q = `
UPDATE wallets
SET balance = $2, total_deposited = $3, total_spent = $4, total_withdrawn = $5,
    is_frozen = $6, frozen_reason = $7, updated_at = $8
WHERE id = $1
`
	res, err := t.tx.ExecContext(t.ctx, q,
		w.ID, w.Balance, w.TotalDeposited, w.TotalSpent, w.TotalWithdrawn,
		w.IsFrozen, w.FrozenReason, w.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) AppendEntry(e LedgerEntry) error {
	const q = `
INSERT INTO wallet_ledger (
  id, wallet_id, type, amount, balance_before, balance_after,
  description, reference_type, reference_id, idempotency_key, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := t.tx.ExecContext(t.ctx, q,
		e.ID, e.WalletID, e.Type, e.Amount, e.BalanceBefore, e.BalanceAfter,
		e.Description, e.ReferenceType, e.ReferenceID, e.IdempotencyKey, e.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEntry
		}
		return err
	}
	return nil
}

const selectWallet = `
SELECT id, owner_id, balance, total_deposited, total_spent, total_withdrawn,
       is_frozen, frozen_reason, created_at, updated_at
FROM wallets`

func lockWallet(ctx context.Context, tx *sql.Tx, id string) (Wallet, error) {
	return scanWallet(tx.QueryRowContext(ctx, selectWallet+` WHERE id = $1 FOR UPDATE`, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	var w Wallet
	err := row.Scan(
		&w.ID, &w.OwnerID, &w.Balance, &w.TotalDeposited, &w.TotalSpent, &w.TotalWithdrawn,
		&w.IsFrozen, &w.FrozenReason, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	return w, nil
}
