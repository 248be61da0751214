package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the wallet manager.
//
// Money invariants:
// - No balance update without a ledger entry, in the same transaction.
// - Ledger is append-only (immutable).
// - Balance never goes below zero.
// - Frozen wallets reject credits and debits; only refunds that unwind a
//   reservation taken before the freeze may pass (see Mutator.Refund).
type Service struct {
	store Store
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// Posting describes one balance change to apply.
type Posting struct {
	Type        EntryType
	Description string

	ReferenceType string
	ReferenceID   string

	// IdempotencyKey is optional; when set it must be unique per wallet.
	IdempotencyKey string
}

// Ensure returns the owner's wallet, creating it on first use.
func (s *Service) Ensure(ctx context.Context, ownerID string) (Wallet, error) {
	if ownerID == "" {
		return Wallet{}, ErrNotFound
	}
	w, ok, err := s.store.GetWalletByOwner(ctx, ownerID)
	if err != nil {
		return Wallet{}, err
	}
	if ok {
		return w, nil
	}
	now := s.clock().UTC()
	w = Wallet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateWallet(ctx, w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

func (s *Service) Get(ctx context.Context, walletID string) (Wallet, error) {
	return s.store.GetWallet(ctx, walletID)
}

// Credit adds amount (minor units, > 0) to the wallet.
func (s *Service) Credit(ctx context.Context, walletID string, amount int64, p Posting) (LedgerEntry, Wallet, error) {
	if amount <= 0 {
		return LedgerEntry{}, Wallet{}, ErrInvalidAmount
	}
	return s.applyOne(ctx, walletID, amount, p, false)
}

// Debit removes amount (minor units, > 0) from the wallet.
// Fails with ErrInsufficientBalance rather than overdrawing.
func (s *Service) Debit(ctx context.Context, walletID string, amount int64, p Posting) (LedgerEntry, Wallet, error) {
	if amount <= 0 {
		return LedgerEntry{}, Wallet{}, ErrInvalidAmount
	}
	return s.applyOne(ctx, walletID, -amount, p, false)
}

// Refund credits back a previously reserved amount. It bypasses the frozen
// check: a freeze must not strand funds that were escrowed before it. Only the
// request workflow engine should call this, and only to unwind a reservation.
func (s *Service) Refund(ctx context.Context, walletID string, amount int64, p Posting) (LedgerEntry, Wallet, error) {
	if amount <= 0 {
		return LedgerEntry{}, Wallet{}, ErrInvalidAmount
	}
	p.Type = EntryTypeRefund
	return s.applyOne(ctx, walletID, amount, p, true)
}

func (s *Service) applyOne(ctx context.Context, walletID string, signed int64, p Posting, allowFrozen bool) (LedgerEntry, Wallet, error) {
	if signed == 0 {
		return LedgerEntry{}, Wallet{}, ErrInvalidAmount
	}
	var (
		outEntry LedgerEntry
		outW     Wallet
	)
	err := s.store.Apply(ctx, []string{walletID}, func(tx Tx) error {
		m := &Mutator{tx: tx, now: s.clock().UTC()}
		e, err := m.post(walletID, signed, p, allowFrozen)
		if err != nil {
			return err
		}
		outEntry = e
		w, err := tx.Wallet(walletID)
		if err != nil {
			return err
		}
		outW = w
		return nil
	})
	if err != nil {
		return LedgerEntry{}, Wallet{}, err
	}
	return outEntry, outW, nil
}

// Apply runs fn with every listed wallet locked, giving fn a Mutator for
// checked multi-wallet postings. Used by the settlement coordinator for
// atomic purchase splits.
func (s *Service) Apply(ctx context.Context, walletIDs []string, fn func(m *Mutator) error) error {
	return s.store.Apply(ctx, walletIDs, func(tx Tx) error {
		return fn(&Mutator{tx: tx, now: s.clock().UTC()})
	})
}

// Freeze blocks all credits and debits against the wallet.
func (s *Service) Freeze(ctx context.Context, walletID, reason string) (Wallet, error) {
	return s.setFrozen(ctx, walletID, true, reason)
}

func (s *Service) Unfreeze(ctx context.Context, walletID string) (Wallet, error) {
	return s.setFrozen(ctx, walletID, false, "")
}

func (s *Service) setFrozen(ctx context.Context, walletID string, frozen bool, reason string) (Wallet, error) {
	var out Wallet
	err := s.store.Apply(ctx, []string{walletID}, func(tx Tx) error {
		w, err := tx.Wallet(walletID)
		if err != nil {
			return err
		}
		w.IsFrozen = frozen
		w.FrozenReason = reason
		w.UpdatedAt = s.clock().UTC()
		if err := tx.UpdateWallet(w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return Wallet{}, err
	}
	return out, nil
}

// History lists the wallet's ledger entries, most recent first.
func (s *Service) History(ctx context.Context, walletID string, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.store.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, walletID, limit, offset)
}

// Mutator posts checked balance changes inside one Store.Apply callback.
type Mutator struct {
	tx  Tx
	now time.Time
}

func (m *Mutator) Wallet(id string) (Wallet, error) { return m.tx.Wallet(id) }

func (m *Mutator) Credit(walletID string, amount int64, p Posting) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, ErrInvalidAmount
	}
	return m.post(walletID, amount, p, false)
}

func (m *Mutator) Debit(walletID string, amount int64, p Posting) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, ErrInvalidAmount
	}
	return m.post(walletID, -amount, p, false)
}

// post applies one signed balance change: frozen check, overdraft check,
// ledger append and counter update, all against the locked row.
func (m *Mutator) post(walletID string, signed int64, p Posting, allowFrozen bool) (LedgerEntry, error) {
	w, err := m.tx.Wallet(walletID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if w.IsFrozen && !allowFrozen {
		return LedgerEntry{}, ErrFrozenWallet
	}
	if signed < 0 && w.Balance < -signed {
		return LedgerEntry{}, ErrInsufficientBalance
	}

	e := LedgerEntry{
		ID:             uuid.NewString(),
		WalletID:       walletID,
		Type:           p.Type,
		Amount:         signed,
		BalanceBefore:  w.Balance,
		BalanceAfter:   w.Balance + signed,
		Description:    p.Description,
		ReferenceType:  p.ReferenceType,
		ReferenceID:    p.ReferenceID,
		IdempotencyKey: p.IdempotencyKey,
		CreatedAt:      m.now,
	}
	if err := m.tx.AppendEntry(e); err != nil {
		return LedgerEntry{}, err
	}

	w.Balance += signed
	switch {
	case signed > 0 && p.Type == EntryTypeDeposit:
		w.TotalDeposited += signed
	case signed < 0 && (p.Type == EntryTypeWithdrawal || p.Type == EntryTypePayout):
		w.TotalWithdrawn += -signed
	case signed < 0 && (p.Type == EntryTypePurchase || p.Type == EntryTypeFee):
		w.TotalSpent += -signed
	}
	w.UpdatedAt = m.now
	if err := m.tx.UpdateWallet(w); err != nil {
		return LedgerEntry{}, err
	}
	return e, nil
}
