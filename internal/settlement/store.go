package settlement

import "context"

// ReceiptStore persists purchase receipts.
//
// Implementations must enforce UNIQUE (buyer_wallet_id, listing_id).
type ReceiptStore interface {
	// Create inserts the receipt; ErrAlreadyPurchased when the buyer already
	// holds one for the listing.
	Create(ctx context.Context, r Receipt) error

	// Delete removes a receipt. Only the settlement coordinator calls this,
	// and only to unwind a receipt whose wallet legs failed to settle.
	Delete(ctx context.Context, id string) error

	Find(ctx context.Context, buyerWalletID, listingID string) (Receipt, bool, error)
	Get(ctx context.Context, id string) (Receipt, error)
	ListByBuyer(ctx context.Context, buyerWalletID string, limit, offset int) ([]Receipt, error)
}
