package settlement

import "errors"

var (
	ErrAlreadyPurchased   = errors.New("listing already purchased by this buyer")
	ErrListingUnavailable = errors.New("listing is not purchasable")
	ErrOwnListing         = errors.New("cannot purchase own listing")
	ErrReceiptNotFound    = errors.New("receipt not found")
)
