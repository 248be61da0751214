package listings

import (
	"context"
	"time"
)

// Decision carries the admin-entered fields written with a moderation outcome.
type Decision struct {
	Status           Status
	CheckoutURL      string
	CheckoutProvider string
	FinalPrice       int64
	AdminNotes       string
	RejectReason     string
	DecidedAt        time.Time
}

// Store is the persistence contract for listings.
type Store interface {
	Create(ctx context.Context, l Listing) error
	Get(ctx context.Context, id string) (Listing, error)

	// Decide writes the moderation outcome, compare-and-swap on pending
	// status: a second decision fails with ErrInvalidTransition.
	Decide(ctx context.Context, id string, d Decision) (Listing, error)

	ListBySeller(ctx context.Context, sellerWalletID string, limit, offset int) ([]Listing, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
}
