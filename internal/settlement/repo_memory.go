package settlement

import (
	"context"
	"sync"
)

// MemoryReceiptStore is an in-memory ReceiptStore useful for tests.
// It is not intended for production use.
type MemoryReceiptStore struct {
	mu      sync.Mutex
	byID    map[string]Receipt
	byKey   map[string]string // buyer wallet + "\x00" + listing -> receipt id
	byBuyer map[string][]string
}

func NewMemoryReceiptStore() *MemoryReceiptStore {
	return &MemoryReceiptStore{
		byID:    make(map[string]Receipt),
		byKey:   make(map[string]string),
		byBuyer: make(map[string][]string),
	}
}

func key(buyerWalletID, listingID string) string {
	return buyerWalletID + "\x00" + listingID
}

func (s *MemoryReceiptStore) Create(ctx context.Context, r Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(r.BuyerWalletID, r.ListingID)
	if _, dup := s.byKey[k]; dup {
		return ErrAlreadyPurchased
	}
	s.byID[r.ID] = r
	s.byKey[k] = r.ID
	s.byBuyer[r.BuyerWalletID] = append(s.byBuyer[r.BuyerWalletID], r.ID)
	return nil
}

func (s *MemoryReceiptStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return ErrReceiptNotFound
	}
	delete(s.byID, id)
	delete(s.byKey, key(r.BuyerWalletID, r.ListingID))
	ids := s.byBuyer[r.BuyerWalletID]
	for i, rid := range ids {
		if rid == id {
			s.byBuyer[r.BuyerWalletID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryReceiptStore) Find(ctx context.Context, buyerWalletID, listingID string) (Receipt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[key(buyerWalletID, listingID)]
	if !ok {
		return Receipt{}, false, nil
	}
	return s.byID[id], true, nil
}

func (s *MemoryReceiptStore) Get(ctx context.Context, id string) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return Receipt{}, ErrReceiptNotFound
	}
	return r, nil
}

func (s *MemoryReceiptStore) ListByBuyer(ctx context.Context, buyerWalletID string, limit, offset int) ([]Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byBuyer[buyerWalletID]

	var out []Receipt
	for i := len(ids) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.byID[ids[i]])
	}
	return out, nil
}
