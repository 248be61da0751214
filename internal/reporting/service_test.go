package reporting

import (
	"context"
	"testing"

	"marketplace-ledger/internal/listings"
	"marketplace-ledger/internal/pricing"
	"marketplace-ledger/internal/requests"
	"marketplace-ledger/internal/wallet"
)

func testFees() pricing.Schedule {
	return pricing.Schedule{
		CommissionBps:     2000,
		WithdrawalFeeBps:  300,
		WithdrawalFeeFlat: 100,
		VerificationFee:   5_000,
		MinDeposit:        500,
		MinWithdrawal:     1_000,
	}
}

func TestWalletSummaryPendingBuckets(t *testing.T) {
	ctx := context.Background()
	wallets := wallet.NewService(wallet.NewMemoryStore())
	requestStore := requests.NewMemoryStore()
	listingStore := listings.NewMemoryStore()
	requestSvc := requests.NewService(requestStore, wallets, testFees(), nil)

	platform, err := wallets.Ensure(ctx, wallet.PlatformOwnerID)
	if err != nil {
		t.Fatalf("platform wallet: %v", err)
	}
	svc := NewService(wallets, requestStore, listingStore, platform.ID)

	w, err := wallets.Ensure(ctx, "alice")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, _, err := wallets.Credit(ctx, w.ID, 10_000, wallet.Posting{
		Type:        wallet.EntryTypeDeposit,
		Description: "seed",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := requestSvc.SubmitDeposit(ctx, "alice", requests.DepositInput{Amount: 2_000, Method: requests.MethodCrypto}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := requestSvc.SubmitWithdrawal(ctx, "alice", requests.WithdrawalInput{
		Amount: 5_000,
		Method: requests.MethodMobileMoney,
		PaymentDetails: requests.PaymentDetails{
			MobileMoney: &requests.MobileMoneyDetails{Provider: "mtn", PhoneNumber: "+256700000001"},
		},
	}); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	out, err := svc.WalletSummary(ctx, "alice")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Balance != 5_000 {
		t.Fatalf("balance = %d, want 5000 after reservation", out.Balance)
	}
	if out.PendingDeposits.Count != 1 || out.PendingDeposits.Amount != 2_000 {
		t.Fatalf("pending deposits = %+v", out.PendingDeposits)
	}
	if out.PendingWithdrawals.Count != 1 || out.PendingWithdrawals.Amount != 5_000 {
		t.Fatalf("pending withdrawals = %+v", out.PendingWithdrawals)
	}
}

func TestStatsCountsPendingWork(t *testing.T) {
	ctx := context.Background()
	wallets := wallet.NewService(wallet.NewMemoryStore())
	requestStore := requests.NewMemoryStore()
	listingStore := listings.NewMemoryStore()
	requestSvc := requests.NewService(requestStore, wallets, testFees(), nil)
	listingSvc := listings.NewService(listingStore, wallets, nil)

	platform, err := wallets.Ensure(ctx, wallet.PlatformOwnerID)
	if err != nil {
		t.Fatalf("platform wallet: %v", err)
	}
	svc := NewService(wallets, requestStore, listingStore, platform.ID)

	if _, err := requestSvc.SubmitDeposit(ctx, "alice", requests.DepositInput{Amount: 2_000, Method: requests.MethodCrypto}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := listingSvc.Submit(ctx, "seller-1", listings.SubmitInput{Title: "starter pack", Price: 10_000}); err != nil {
		t.Fatalf("listing: %v", err)
	}

	out, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if out.PendingDeposits != 1 {
		t.Fatalf("pending deposits = %d", out.PendingDeposits)
	}
	if out.PendingListings != 1 {
		t.Fatalf("pending listings = %d", out.PendingListings)
	}
	if out.PlatformBalance != 0 {
		t.Fatalf("platform balance = %d", out.PlatformBalance)
	}
}
