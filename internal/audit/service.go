package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only; callers should treat logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogRequestDecision records an admin transition on a money request.
func (s *Service) LogRequestDecision(ctx context.Context, actorID, actorRole, walletID, requestID, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeRequestDecision,
		ActorUserID: actorID,
		ActorRole:   actorRole,
		WalletID:    walletID,
		RequestID:   requestID,
		Message:     message,
	})
}

// LogListingDecision records an admin approval/rejection of a listing.
func (s *Service) LogListingDecision(ctx context.Context, actorID, actorRole, listingID, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeListingDecision,
		ActorUserID: actorID,
		ActorRole:   actorRole,
		ListingID:   listingID,
		Message:     message,
	})
}

// LogFreeze records an administrative wallet freeze or unfreeze.
func (s *Service) LogFreeze(ctx context.Context, actorID, actorRole, walletID, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeWalletFreeze,
		ActorUserID: actorID,
		ActorRole:   actorRole,
		WalletID:    walletID,
		Message:     message,
	})
}
