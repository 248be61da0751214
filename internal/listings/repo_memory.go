package listings

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]Listing
	bySeller map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]Listing),
		bySeller: make(map[string][]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, l Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[l.ID] = l
	s.bySeller[l.SellerWalletID] = append(s.bySeller[l.SellerWalletID], l.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return Listing{}, ErrNotFound
	}
	return l, nil
}

func (s *MemoryStore) Decide(ctx context.Context, id string, d Decision) (Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return Listing{}, ErrNotFound
	}
	if l.Status != StatusPending {
		return Listing{}, ErrInvalidTransition
	}
	l.Status = d.Status
	l.CheckoutURL = d.CheckoutURL
	l.CheckoutProvider = d.CheckoutProvider
	l.FinalPrice = d.FinalPrice
	l.AdminNotes = d.AdminNotes
	l.RejectReason = d.RejectReason
	l.UpdatedAt = d.DecidedAt
	s.byID[id] = l
	return l, nil
}

func (s *MemoryStore) ListBySeller(ctx context.Context, sellerWalletID string, limit, offset int) ([]Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.bySeller[sellerWalletID]

	var out []Listing
	for i := len(ids) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.byID[ids[i]])
	}
	return out, nil
}

func (s *MemoryStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, l := range s.byID {
		if l.Status == status {
			count++
		}
	}
	return count, nil
}
