package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func newTestService(t *testing.T) (*Service, *MemoryStore, Wallet) {
	t.Helper()
	store := NewMemoryStore()
	svc := NewService(store)
	w, err := svc.Ensure(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	return svc, store, w
}

func fund(t *testing.T, svc *Service, walletID string, amount int64) {
	t.Helper()
	_, _, err := svc.Credit(context.Background(), walletID, amount, Posting{Type: EntryTypeDeposit, Description: "test funding"})
	if err != nil {
		t.Fatalf("funding credit: %v", err)
	}
}

func TestEnsureIsIdempotentPerOwner(t *testing.T) {
	svc, _, w := newTestService(t)
	again, err := svc.Ensure(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if again.ID != w.ID {
		t.Fatalf("expected same wallet, got %s and %s", w.ID, again.ID)
	}
}

func TestCreditDebitConservation(t *testing.T) {
	svc, store, w := newTestService(t)
	ctx := context.Background()

	fund(t, svc, w.ID, 10_000)
	if _, _, err := svc.Debit(ctx, w.ID, 2_500, Posting{Type: EntryTypePurchase}); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if _, _, err := svc.Credit(ctx, w.ID, 1_000, Posting{Type: EntryTypeSale}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	got, err := svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var sum int64
	prev := int64(0)
	for _, e := range store.Entries(w.ID) {
		if e.BalanceBefore != prev {
			t.Fatalf("broken chain: balance_before %d, want %d", e.BalanceBefore, prev)
		}
		if e.BalanceAfter != e.BalanceBefore+e.Amount {
			t.Fatalf("entry math broken: %d + %d != %d", e.BalanceBefore, e.Amount, e.BalanceAfter)
		}
		prev = e.BalanceAfter
		sum += e.Amount
	}
	if got.Balance != sum {
		t.Fatalf("balance %d does not equal ledger sum %d", got.Balance, sum)
	}
	if got.Balance != 8_500 {
		t.Fatalf("balance = %d, want 8500", got.Balance)
	}
}

func TestDebitRejectsOverdraft(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()
	fund(t, svc, w.ID, 100)

	_, _, err := svc.Debit(ctx, w.ID, 101, Posting{Type: EntryTypePurchase})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	got, _ := svc.Get(ctx, w.ID)
	if got.Balance != 100 {
		t.Fatalf("balance changed on failed debit: %d", got.Balance)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc, store, w := newTestService(t)
	ctx := context.Background()
	fund(t, svc, w.ID, 1_000)

	// 20 concurrent debits of 300: at most 3 can succeed.
	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Debit(ctx, w.ID, 300, Posting{Type: EntryTypeWithdrawal})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 3 {
		t.Fatalf("%d debits succeeded, want 3", ok)
	}
	got, _ := svc.Get(ctx, w.ID)
	if got.Balance != 100 {
		t.Fatalf("balance = %d, want 100", got.Balance)
	}
	var sum int64
	for _, e := range store.Entries(w.ID) {
		sum += e.Amount
	}
	if sum != got.Balance {
		t.Fatalf("ledger sum %d != balance %d", sum, got.Balance)
	}
}

func TestFrozenWalletBlocksMutation(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()
	fund(t, svc, w.ID, 500)

	if _, err := svc.Freeze(ctx, w.ID, "chargeback review"); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	if _, _, err := svc.Credit(ctx, w.ID, 100, Posting{Type: EntryTypeDeposit}); !errors.Is(err, ErrFrozenWallet) {
		t.Fatalf("credit on frozen: %v", err)
	}
	if _, _, err := svc.Debit(ctx, w.ID, 100, Posting{Type: EntryTypePurchase}); !errors.Is(err, ErrFrozenWallet) {
		t.Fatalf("debit on frozen: %v", err)
	}
	got, _ := svc.Get(ctx, w.ID)
	if got.Balance != 500 {
		t.Fatalf("balance changed by failed calls: %d", got.Balance)
	}

	// Refunds unwind reservations taken before the freeze and must pass.
	if _, _, err := svc.Refund(ctx, w.ID, 200, Posting{Description: "withdrawal rejected"}); err != nil {
		t.Fatalf("refund on frozen: %v", err)
	}
	got, _ = svc.Get(ctx, w.ID)
	if got.Balance != 700 {
		t.Fatalf("balance after refund = %d, want 700", got.Balance)
	}

	if _, err := svc.Unfreeze(ctx, w.ID); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}
	if _, _, err := svc.Debit(ctx, w.ID, 100, Posting{Type: EntryTypePurchase}); err != nil {
		t.Fatalf("debit after unfreeze: %v", err)
	}
}

func TestInvalidAmounts(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -1, -500} {
		if _, _, err := svc.Credit(ctx, w.ID, amount, Posting{Type: EntryTypeDeposit}); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("credit %d: %v", amount, err)
		}
		if _, _, err := svc.Debit(ctx, w.ID, amount, Posting{Type: EntryTypePurchase}); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("debit %d: %v", amount, err)
		}
	}
}

func TestCumulativeCounters(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()

	fund(t, svc, w.ID, 10_000)
	if _, _, err := svc.Debit(ctx, w.ID, 3_000, Posting{Type: EntryTypePurchase}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, _, err := svc.Debit(ctx, w.ID, 2_000, Posting{Type: EntryTypeWithdrawal}); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if _, _, err := svc.Debit(ctx, w.ID, 500, Posting{Type: EntryTypeFee}); err != nil {
		t.Fatalf("fee: %v", err)
	}

	got, _ := svc.Get(ctx, w.ID)
	if got.TotalDeposited != 10_000 {
		t.Fatalf("total_deposited = %d", got.TotalDeposited)
	}
	if got.TotalSpent != 3_500 {
		t.Fatalf("total_spent = %d", got.TotalSpent)
	}
	if got.TotalWithdrawn != 2_000 {
		t.Fatalf("total_withdrawn = %d", got.TotalWithdrawn)
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()

	fund(t, svc, w.ID, 1_000)
	if _, _, err := svc.Debit(ctx, w.ID, 100, Posting{Type: EntryTypePurchase, Description: "second"}); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if _, _, err := svc.Credit(ctx, w.ID, 50, Posting{Type: EntryTypeSale, Description: "third"}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	page, err := svc.History(ctx, w.ID, 2, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d", len(page))
	}
	if page[0].Description != "third" || page[1].Description != "second" {
		t.Fatalf("wrong order: %q, %q", page[0].Description, page[1].Description)
	}

	rest, err := svc.History(ctx, w.ID, 2, 2)
	if err != nil {
		t.Fatalf("history offset: %v", err)
	}
	if len(rest) != 1 || rest[0].Type != EntryTypeDeposit {
		t.Fatalf("restart from offset broken: %+v", rest)
	}
}

func TestIdempotencyKeyRejectsDuplicate(t *testing.T) {
	svc, store, w := newTestService(t)
	ctx := context.Background()
	fund(t, svc, w.ID, 1_000)

	p := Posting{Type: EntryTypePurchase, IdempotencyKey: "purchase:listing-1"}
	if _, _, err := svc.Debit(ctx, w.ID, 100, p); err != nil {
		t.Fatalf("first debit: %v", err)
	}
	before := len(store.Entries(w.ID))
	if _, _, err := svc.Debit(ctx, w.ID, 100, p); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
	if got := len(store.Entries(w.ID)); got != before {
		t.Fatalf("duplicate produced ledger entries: %d -> %d", before, got)
	}
	got, _ := svc.Get(ctx, w.ID)
	if got.Balance != 900 {
		t.Fatalf("balance = %d, want 900", got.Balance)
	}
}
