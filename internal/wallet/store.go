package wallet

import "context"

// Tx is the unit of work over one or more locked wallets.
//
// Implementations must guarantee that every wallet passed to Store.Apply is
// exclusively held for the duration of the callback, so a balance read through
// Tx.Wallet cannot go stale before the matching UpdateWallet commits.
type Tx interface {
	// Wallet returns the locked row. ErrNotFound if the id is unknown.
	Wallet(id string) (Wallet, error)

	// UpdateWallet writes back balance, counters and freeze state.
	UpdateWallet(w Wallet) error

	// AppendEntry inserts an immutable ledger row. ErrDuplicateEntry if the
	// entry carries an idempotency key already present for the wallet.
	AppendEntry(e LedgerEntry) error
}

// Store is the persistence contract for wallets and their ledger.
//
// The ledger is append-only: no Update/Delete methods exist by design.
type Store interface {
	CreateWallet(ctx context.Context, w Wallet) error
	GetWallet(ctx context.Context, id string) (Wallet, error)
	GetWalletByOwner(ctx context.Context, ownerID string) (Wallet, bool, error)

	// Apply runs fn with every wallet in ids exclusively locked, committing
	// all writes atomically. Implementations must acquire locks in ascending
	// wallet id order so overlapping multi-wallet operations cannot deadlock.
	Apply(ctx context.Context, ids []string, fn func(tx Tx) error) error

	// History lists ledger entries most-recent-first.
	History(ctx context.Context, walletID string, limit, offset int) ([]LedgerEntry, error)
}
