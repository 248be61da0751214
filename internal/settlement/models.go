package settlement

import "time"

// Receipt links a completed purchase to its parties and amounts. One receipt
// exists per (buyer wallet, listing): it is the idempotency record that makes
// a repeat purchase fail instead of double-charging, and it gates review
// eligibility upstream.
//
// Conservation: Price == Commission + SellerNet, always.
type Receipt struct {
	ID             string `json:"id" db:"id"`
	ListingID      string `json:"listing_id" db:"listing_id"`
	BuyerWalletID  string `json:"buyer_wallet_id" db:"buyer_wallet_id"`
	SellerWalletID string `json:"seller_wallet_id" db:"seller_wallet_id"`

	Price      int64 `json:"price" db:"price"`
	Commission int64 `json:"commission" db:"commission"`
	SellerNet  int64 `json:"seller_net" db:"seller_net"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
