package listings

import (
	"context"
	"strings"
	"time"

	"marketplace-ledger/internal/audit"
	"marketplace-ledger/internal/wallet"

	"github.com/google/uuid"
)

// Service is the listing approval gate. It couples the admin moderation
// workflow to marketplace visibility: a listing cannot be purchasable until
// approved together with a checkout configuration.
type Service struct {
	store   Store
	wallets *wallet.Service
	audit   *audit.Service
	clock   func() time.Time
}

func NewService(store Store, wallets *wallet.Service, auditSvc *audit.Service) *Service {
	return &Service{store: store, wallets: wallets, audit: auditSvc, clock: time.Now}
}

type SubmitInput struct {
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// Submit records a seller's listing as pending moderation.
func (s *Service) Submit(ctx context.Context, sellerOwnerID string, in SubmitInput) (Listing, error) {
	if in.Price <= 0 {
		return Listing{}, ErrInvalidPrice
	}
	w, err := s.wallets.Ensure(ctx, sellerOwnerID)
	if err != nil {
		return Listing{}, err
	}
	now := s.clock().UTC()
	l := Listing{
		ID:             uuid.NewString(),
		SellerWalletID: w.ID,
		Title:          strings.TrimSpace(in.Title),
		Price:          in.Price,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListBySeller(ctx context.Context, sellerWalletID string, limit, offset int) ([]Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListBySeller(ctx, sellerWalletID, limit, offset)
}

type ApprovalInput struct {
	CheckoutURL      string `json:"checkout_url"`
	CheckoutProvider string `json:"checkout_provider"`
	FinalPrice       int64  `json:"final_price,omitempty"`
	AdminNotes       string `json:"admin_notes,omitempty"`
}

// Approve publishes the listing. The checkout configuration is mandatory:
// approving without it would silently leave the listing unpurchasable, so it
// fails with ErrIncompleteApproval instead. FinalPrice, when set, overrides
// the seller price for all subsequent purchases.
func (s *Service) Approve(ctx context.Context, adminID, adminRole, listingID string, in ApprovalInput) (Listing, error) {
	if strings.TrimSpace(in.CheckoutURL) == "" || strings.TrimSpace(in.CheckoutProvider) == "" {
		return Listing{}, ErrIncompleteApproval
	}
	if in.FinalPrice < 0 {
		return Listing{}, ErrInvalidPrice
	}
	out, err := s.store.Decide(ctx, listingID, Decision{
		Status:           StatusApproved,
		CheckoutURL:      strings.TrimSpace(in.CheckoutURL),
		CheckoutProvider: strings.TrimSpace(in.CheckoutProvider),
		FinalPrice:       in.FinalPrice,
		AdminNotes:       in.AdminNotes,
		DecidedAt:        s.clock().UTC(),
	})
	if err != nil {
		return Listing{}, err
	}
	s.logDecision(ctx, adminID, adminRole, out, "listing approved")
	return out, nil
}

// Reject declines the listing. The reason is persisted and surfaced to the
// seller, so it must be non-empty.
func (s *Service) Reject(ctx context.Context, adminID, adminRole, listingID, reason string) (Listing, error) {
	if strings.TrimSpace(reason) == "" {
		return Listing{}, ErrReasonRequired
	}
	out, err := s.store.Decide(ctx, listingID, Decision{
		Status:       StatusRejected,
		RejectReason: strings.TrimSpace(reason),
		DecidedAt:    s.clock().UTC(),
	})
	if err != nil {
		return Listing{}, err
	}
	s.logDecision(ctx, adminID, adminRole, out, "listing rejected")
	return out, nil
}

func (s *Service) logDecision(ctx context.Context, adminID, adminRole string, l Listing, msg string) {
	if s.audit == nil {
		return
	}
	// Best-effort.
	_ = s.audit.LogListingDecision(ctx, adminID, adminRole, l.ID, msg)
}
