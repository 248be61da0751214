package requests

import (
	"context"
	"time"
)

// Decision carries the admin-entered fields written with a transition.
type Decision struct {
	AdminNotes   string
	RejectReason string
	DecidedAt    time.Time
}

// Store is the persistence contract for requests.
type Store interface {
	Create(ctx context.Context, r Request) error
	Get(ctx context.Context, id string) (Request, error)

	// Transition moves the request from -> to, compare-and-swap on the current
	// status. Returns ErrInvalidTransition when the request is not in from,
	// which makes retried admin calls no-ops instead of double-effects.
	Transition(ctx context.Context, id string, from, to Status, d Decision) (Request, error)

	ListByWallet(ctx context.Context, walletID string, kind Kind, limit, offset int) ([]Request, error)

	// PendingSummary returns count and total amount of pending requests of a
	// kind for one wallet. Used by wallet summaries.
	PendingSummary(ctx context.Context, walletID string, kind Kind) (int, int64, error)

	// CountByStatus is an admin-side queue size metric.
	CountByStatus(ctx context.Context, kind Kind, status Status) (int, error)
}
