package listings

import (
	"context"
	"errors"
	"testing"

	"marketplace-ledger/internal/wallet"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	wallets := wallet.NewService(wallet.NewMemoryStore())
	return NewService(NewMemoryStore(), wallets, nil)
}

func submitListing(t *testing.T, svc *Service, owner string, price int64) Listing {
	t.Helper()
	l, err := svc.Submit(context.Background(), owner, SubmitInput{Title: "starter pack", Price: price})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return l
}

func TestSubmitRejectsNonPositivePrice(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Submit(context.Background(), "seller-1", SubmitInput{Title: "x", Price: 0}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("zero price: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "seller-1", SubmitInput{Title: "x", Price: -100}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("negative price: %v", err)
	}
}

func TestApproveRequiresCheckoutConfig(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := submitListing(t, svc, "seller-1", 10_000)

	if _, err := svc.Approve(ctx, "admin-1", "admin", l.ID, ApprovalInput{}); !errors.Is(err, ErrIncompleteApproval) {
		t.Fatalf("empty approval: %v", err)
	}
	if _, err := svc.Approve(ctx, "admin-1", "admin", l.ID, ApprovalInput{CheckoutURL: "https://pay.example/abc"}); !errors.Is(err, ErrIncompleteApproval) {
		t.Fatalf("missing provider: %v", err)
	}

	// A failed approval leaves the listing pending and unpurchasable.
	got, err := svc.Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusPending || got.Purchasable() {
		t.Fatalf("listing = %+v", got)
	}
}

func TestApprovePublishesListing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := submitListing(t, svc, "seller-1", 10_000)

	out, err := svc.Approve(ctx, "admin-1", "admin", l.ID, ApprovalInput{
		CheckoutURL:      "https://pay.example/abc",
		CheckoutProvider: "stripe",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if out.Status != StatusApproved || !out.Purchasable() {
		t.Fatalf("listing = %+v", out)
	}
	if out.EffectivePrice() != 10_000 {
		t.Fatalf("effective price = %d", out.EffectivePrice())
	}
}

func TestApproveWithFinalPriceOverride(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := submitListing(t, svc, "seller-1", 10_000)

	out, err := svc.Approve(ctx, "admin-1", "admin", l.ID, ApprovalInput{
		CheckoutURL:      "https://pay.example/abc",
		CheckoutProvider: "stripe",
		FinalPrice:       8_000,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if out.EffectivePrice() != 8_000 {
		t.Fatalf("effective price = %d, want the admin override", out.EffectivePrice())
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := submitListing(t, svc, "seller-1", 10_000)

	if _, err := svc.Reject(ctx, "admin-1", "admin", l.ID, "  "); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("blank reason: %v", err)
	}

	out, err := svc.Reject(ctx, "admin-1", "admin", l.ID, "prohibited item")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if out.Status != StatusRejected || out.RejectReason != "prohibited item" {
		t.Fatalf("listing = %+v", out)
	}
}

func TestDecisionIsFinal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	l := submitListing(t, svc, "seller-1", 10_000)

	if _, err := svc.Reject(ctx, "admin-1", "admin", l.ID, "prohibited item"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := svc.Approve(ctx, "admin-1", "admin", l.ID, ApprovalInput{
		CheckoutURL:      "https://pay.example/abc",
		CheckoutProvider: "stripe",
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approve after reject: %v", err)
	}
}

func TestEffectivePriceDiscount(t *testing.T) {
	l := Listing{Price: 10_000, DiscountBps: 1_500}
	if got := l.EffectivePrice(); got != 8_500 {
		t.Fatalf("discounted price = %d, want 8500", got)
	}

	// Override first, then discount.
	l = Listing{Price: 10_000, FinalPrice: 8_000, DiscountBps: 2_500}
	if got := l.EffectivePrice(); got != 6_000 {
		t.Fatalf("discounted override = %d, want 6000", got)
	}
}
