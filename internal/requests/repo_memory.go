package requests

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]Request
	byWallet map[string][]string // wallet id -> request ids in create order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]Request),
		byWallet: make(map[string][]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[r.ID] = r
	s.byWallet[r.WalletID] = append(s.byWallet[r.WalletID], r.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Transition(ctx context.Context, id string, from, to Status, d Decision) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if r.Status != from {
		return Request{}, ErrInvalidTransition
	}
	r.Status = to
	if d.AdminNotes != "" {
		r.AdminNotes = d.AdminNotes
	}
	if d.RejectReason != "" {
		r.RejectReason = d.RejectReason
	}
	if !d.DecidedAt.IsZero() {
		at := d.DecidedAt
		r.DecidedAt = &at
	}
	s.byID[id] = r
	return r, nil
}

func (s *MemoryStore) ListByWallet(ctx context.Context, walletID string, kind Kind, limit, offset int) ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byWallet[walletID]

	var out []Request
	skipped := 0
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		r := s.byID[ids[i]]
		if kind != "" && r.Kind != kind {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) PendingSummary(ctx context.Context, walletID string, kind Kind) (int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	var total int64
	for _, id := range s.byWallet[walletID] {
		r := s.byID[id]
		if r.Kind == kind && r.Status == StatusPending {
			count++
			total += r.Amount
		}
	}
	return count, total, nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context, kind Kind, status Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, r := range s.byID {
		if r.Kind == kind && r.Status == status {
			count++
		}
	}
	return count, nil
}
