package listings

import "time"

// Listing is a seller's digital-goods offer. It becomes purchasable only once
// an admin approves it together with a checkout configuration; approval
// without one is an invalid transition.
type Listing struct {
	ID             string `json:"id" db:"id"`
	SellerWalletID string `json:"seller_wallet_id" db:"seller_wallet_id"`

	Title string `json:"title" db:"title"`

	// Price is the seller-submitted price in minor units. FinalPrice is the
	// admin override set at approval time; 0 means unset. All purchase
	// computations use FinalPrice when set.
	Price      int64 `json:"price" db:"price"`
	FinalPrice int64 `json:"final_price,omitempty" db:"final_price"`

	// CommissionBps overrides the platform default when > 0.
	CommissionBps int `json:"commission_bps,omitempty" db:"commission_bps"`

	// DiscountBps is an active promotional discount on the effective price.
	DiscountBps int `json:"discount_bps,omitempty" db:"discount_bps"`

	Status           Status `json:"status" db:"status"`
	CheckoutURL      string `json:"checkout_url,omitempty" db:"checkout_url"`
	CheckoutProvider string `json:"checkout_provider,omitempty" db:"checkout_provider"`

	RejectReason string `json:"reject_reason,omitempty" db:"reject_reason"`
	AdminNotes   string `json:"admin_notes,omitempty" db:"admin_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Purchasable reports whether the listing can be bought right now.
func (l Listing) Purchasable() bool {
	return l.Status == StatusApproved && l.CheckoutURL != ""
}

// EffectivePrice is the amount a buyer pays: the admin override when set,
// otherwise the seller price, less any active discount.
func (l Listing) EffectivePrice() int64 {
	price := l.Price
	if l.FinalPrice > 0 {
		price = l.FinalPrice
	}
	if l.DiscountBps > 0 {
		discount := (price*int64(l.DiscountBps) + 5_000) / 10_000
		price -= discount
	}
	if price < 0 {
		return 0
	}
	return price
}
