package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-ledger/internal/listings"
	"marketplace-ledger/internal/pricing"
	"marketplace-ledger/internal/wallet"

	"github.com/google/uuid"
)

// Service is the settlement coordinator: it turns a purchase into one atomic
// three-wallet transfer (buyer debit, seller credit, platform commission
// credit) plus a receipt. If any leg fails, nothing is observable.
type Service struct {
	wallets  *wallet.Service
	listings *listings.Service
	receipts ReceiptStore
	fees     pricing.Schedule

	// platformWalletID holds the commission wallet; ensured at startup.
	platformWalletID string

	clock func() time.Time
}

func NewService(wallets *wallet.Service, listingSvc *listings.Service, receipts ReceiptStore, fees pricing.Schedule, platformWalletID string) *Service {
	return &Service{
		wallets:          wallets,
		listings:         listingSvc,
		receipts:         receipts,
		fees:             fees,
		platformWalletID: platformWalletID,
		clock:            time.Now,
	}
}

const referenceType = "listing"

// Purchase settles a marketplace purchase for the buyer.
//
// Locks buyer, seller and platform wallets (the store orders them by id) and
// posts the three legs in one transaction. The buyer debit carries a
// (buyer, listing) idempotency key, so a concurrent duplicate loses at the
// ledger, not after a second charge.
func (s *Service) Purchase(ctx context.Context, buyerOwnerID, listingID string) (Receipt, error) {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return Receipt{}, err
	}
	if !l.Purchasable() {
		return Receipt{}, ErrListingUnavailable
	}

	buyer, err := s.wallets.Ensure(ctx, buyerOwnerID)
	if err != nil {
		return Receipt{}, err
	}
	if buyer.ID == l.SellerWalletID {
		return Receipt{}, ErrOwnListing
	}

	if _, exists, err := s.receipts.Find(ctx, buyer.ID, l.ID); err != nil {
		return Receipt{}, err
	} else if exists {
		return Receipt{}, ErrAlreadyPurchased
	}

	price := l.EffectivePrice()
	commission, sellerNet := s.fees.Commission(price, l.CommissionBps)

	now := s.clock().UTC()
	receipt := Receipt{
		ID:             uuid.NewString(),
		ListingID:      l.ID,
		BuyerWalletID:  buyer.ID,
		SellerWalletID: l.SellerWalletID,
		Price:          price,
		Commission:     commission,
		SellerNet:      sellerNet,
		CreatedAt:      now,
	}

	// The receipt goes in first: its (buyer, listing) unique key is the
	// concurrency pre-check, and a receipt whose legs never settle is
	// unwound below. The money must not move before its record exists.
	if err := s.receipts.Create(ctx, receipt); err != nil {
		return Receipt{}, err
	}

	ids := []string{buyer.ID, l.SellerWalletID, s.platformWalletID}
	err = s.wallets.Apply(ctx, ids, func(m *wallet.Mutator) error {
		if _, err := m.Debit(buyer.ID, price, wallet.Posting{
			Type:           wallet.EntryTypePurchase,
			Description:    "purchase: " + l.Title,
			ReferenceType:  referenceType,
			ReferenceID:    l.ID,
			IdempotencyKey: "purchase:" + l.ID,
		}); err != nil {
			return err
		}
		if sellerNet > 0 {
			if _, err := m.Credit(l.SellerWalletID, sellerNet, wallet.Posting{
				Type:          wallet.EntryTypeSale,
				Description:   "sale: " + l.Title,
				ReferenceType: referenceType,
				ReferenceID:   l.ID,
			}); err != nil {
				return err
			}
		}
		if commission > 0 {
			if _, err := m.Credit(s.platformWalletID, commission, wallet.Posting{
				Type:          wallet.EntryTypeFee,
				Description:   "commission: " + l.Title,
				ReferenceType: referenceType,
				ReferenceID:   l.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Unwind the receipt so a retry can settle cleanly.
		if delErr := s.receipts.Delete(ctx, receipt.ID); delErr != nil {
			return Receipt{}, fmt.Errorf("settlement failed (%v), receipt cleanup failed: %w", err, delErr)
		}
		if errors.Is(err, wallet.ErrDuplicateEntry) {
			return Receipt{}, ErrAlreadyPurchased
		}
		return Receipt{}, err
	}
	return receipt, nil
}

// ReceiptFor reports whether the buyer has purchased the listing. Used to
// gate review eligibility.
func (s *Service) ReceiptFor(ctx context.Context, buyerWalletID, listingID string) (Receipt, bool, error) {
	return s.receipts.Find(ctx, buyerWalletID, listingID)
}

func (s *Service) ListByBuyer(ctx context.Context, buyerWalletID string, limit, offset int) ([]Receipt, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.receipts.ListByBuyer(ctx, buyerWalletID, limit, offset)
}
