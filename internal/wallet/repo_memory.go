package wallet

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store useful for tests.
// It is not intended for production use.
//
// One store-wide mutex stands in for row locks: every Apply callback runs
// serialized, and its writes are buffered and committed only if the callback
// returns nil, matching the all-or-nothing semantics of the Postgres store.
type MemoryStore struct {
	mu       sync.Mutex
	wallets  map[string]Wallet
	byOwner  map[string]string
	ledgers  map[string][]LedgerEntry
	idemKeys map[string]struct{} // walletID + "\x00" + key
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets:  make(map[string]Wallet),
		byOwner:  make(map[string]string),
		ledgers:  make(map[string][]LedgerEntry),
		idemKeys: make(map[string]struct{}),
	}
}

func (s *MemoryStore) CreateWallet(ctx context.Context, w Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
	s.byOwner[w.OwnerID] = w.ID
	return nil
}

func (s *MemoryStore) GetWallet(ctx context.Context, id string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (s *MemoryStore) GetWalletByOwner(ctx context.Context, ownerID string) (Wallet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOwner[ownerID]
	if !ok {
		return Wallet{}, false, nil
	}
	return s.wallets[id], true, nil
}

func (s *MemoryStore) Apply(ctx context.Context, ids []string, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:      s,
		dirty:      make(map[string]Wallet),
		newEntries: nil,
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit buffered writes.
	for id, w := range tx.dirty {
		s.wallets[id] = w
	}
	for _, e := range tx.newEntries {
		s.ledgers[e.WalletID] = append(s.ledgers[e.WalletID], e)
		if e.IdempotencyKey != "" {
			s.idemKeys[e.WalletID+"\x00"+e.IdempotencyKey] = struct{}{}
		}
	}
	return nil
}

func (s *MemoryStore) History(ctx context.Context, walletID string, limit, offset int) ([]LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.ledgers[walletID]

	// Most recent first.
	var out []LedgerEntry
	for i := len(entries) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// Entries returns the full ledger for a wallet in append order. Test helper.
func (s *MemoryStore) Entries(walletID string) []LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LedgerEntry, len(s.ledgers[walletID]))
	copy(out, s.ledgers[walletID])
	return out
}

type memTx struct {
	store      *MemoryStore
	dirty      map[string]Wallet
	newEntries []LedgerEntry
}

func (t *memTx) Wallet(id string) (Wallet, error) {
	if w, ok := t.dirty[id]; ok {
		return w, nil
	}
	w, ok := t.store.wallets[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (t *memTx) UpdateWallet(w Wallet) error {
	if _, ok := t.store.wallets[w.ID]; !ok {
		return ErrNotFound
	}
	t.dirty[w.ID] = w
	return nil
}

func (t *memTx) AppendEntry(e LedgerEntry) error {
	if e.IdempotencyKey != "" {
		key := e.WalletID + "\x00" + e.IdempotencyKey
		if _, dup := t.store.idemKeys[key]; dup {
			return ErrDuplicateEntry
		}
		for _, pending := range t.newEntries {
			if pending.WalletID == e.WalletID && pending.IdempotencyKey == e.IdempotencyKey {
				return ErrDuplicateEntry
			}
		}
	}
	t.newEntries = append(t.newEntries, e)
	return nil
}
