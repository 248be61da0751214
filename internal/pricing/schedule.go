package pricing

// Amounts are expressed in minor units (cents) using int64.
// Rates are expressed in basis points (1 bps = 0.01%).
//
// Contract:
// - Pure calculation only; no storage, no provider calls.
// - The schedule is injected configuration. Nothing monetary is hard-coded
//   anywhere else in the engine.

// Schedule carries the platform's fee and threshold configuration.
type Schedule struct {
	// CommissionBps is the default marketplace commission (e.g. 2000 = 20%).
	// A listing may carry its own override.
	CommissionBps int

	// WithdrawalFeeBps + WithdrawalFeeFlat make up the withdrawal fee
	// (e.g. 300 bps + a flat amount).
	WithdrawalFeeBps  int
	WithdrawalFeeFlat int64

	// VerificationFee is the flat seller verification charge.
	VerificationFee int64

	// Minimum accepted request amounts.
	MinDeposit    int64
	MinWithdrawal int64
}

// bpsOf computes amount × bps, rounding half up on minor units.
func bpsOf(amount int64, bps int) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*int64(bps) + 5_000) / 10_000
}

// Split divides a sale price into (commission, sellerNet) using the given
// commission rate. sellerNet is derived by subtraction so the two parts always
// sum to exactly the price, whatever the rounding did.
func Split(price int64, commissionBps int) (commission, sellerNet int64) {
	commission = bpsOf(price, commissionBps)
	if commission > price {
		commission = price
	}
	return commission, price - commission
}

// Commission applies the schedule's default rate unless the listing override
// is set (> 0).
func (s Schedule) Commission(price int64, overrideBps int) (commission, sellerNet int64) {
	bps := s.CommissionBps
	if overrideBps > 0 {
		bps = overrideBps
	}
	return Split(price, bps)
}

// WithdrawalFee computes the fee charged on a withdrawal of amount.
func (s Schedule) WithdrawalFee(amount int64) int64 {
	return bpsOf(amount, s.WithdrawalFeeBps) + s.WithdrawalFeeFlat
}

// WithdrawalNet is the amount actually paid out after the fee.
func (s Schedule) WithdrawalNet(amount int64) (fee, net int64) {
	fee = s.WithdrawalFee(amount)
	if fee > amount {
		return fee, 0
	}
	return fee, amount - fee
}
