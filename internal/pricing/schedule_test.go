package pricing

import "testing"

func TestSplitConservesPrice(t *testing.T) {
	cases := []struct {
		price      int64
		bps        int
		commission int64
	}{
		{10_000, 2000, 2_000}, // $100 at 20% -> $20
		{9_999, 2000, 2_000},  // rounds half up
		{1, 2000, 0},
		{3, 5000, 2}, // 1.5 rounds up
		{0, 2000, 0},
		{10_000, 0, 0},
	}
	for _, c := range cases {
		commission, net := Split(c.price, c.bps)
		if commission != c.commission {
			t.Fatalf("Split(%d, %d) commission = %d, want %d", c.price, c.bps, commission, c.commission)
		}
		if commission+net != c.price {
			t.Fatalf("Split(%d, %d) does not conserve: %d + %d", c.price, c.bps, commission, net)
		}
	}
}

func TestSplitConservesForArbitraryAmounts(t *testing.T) {
	for price := int64(0); price < 5_000; price++ {
		for _, bps := range []int{1, 250, 2000, 9999} {
			commission, net := Split(price, bps)
			if commission+net != price {
				t.Fatalf("price %d bps %d: %d + %d != price", price, bps, commission, net)
			}
			if commission < 0 || net < 0 {
				t.Fatalf("price %d bps %d: negative part", price, bps)
			}
		}
	}
}

func TestCommissionOverride(t *testing.T) {
	s := Schedule{CommissionBps: 2000}
	commission, _ := s.Commission(10_000, 0)
	if commission != 2_000 {
		t.Fatalf("default commission = %d", commission)
	}
	commission, _ = s.Commission(10_000, 1000)
	if commission != 1_000 {
		t.Fatalf("override commission = %d", commission)
	}
}

func TestWithdrawalFee(t *testing.T) {
	// 3% + $1 flat: $50 withdrawal -> $1.50 + $1 = $2.50, net $47.50.
	s := Schedule{WithdrawalFeeBps: 300, WithdrawalFeeFlat: 100}
	fee, net := s.WithdrawalNet(5_000)
	if fee != 250 {
		t.Fatalf("fee = %d, want 250", fee)
	}
	if net != 4_750 {
		t.Fatalf("net = %d, want 4750", net)
	}
}

func TestWithdrawalFeeNeverNegativeNet(t *testing.T) {
	s := Schedule{WithdrawalFeeBps: 300, WithdrawalFeeFlat: 500}
	fee, net := s.WithdrawalNet(100)
	if net != 0 {
		t.Fatalf("net = %d, want 0 when fee %d exceeds amount", net, fee)
	}
}
