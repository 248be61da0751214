package reporting

import "time"

// PendingBucket summarizes the pending requests of one kind for a wallet.
type PendingBucket struct {
	Count  int   `json:"count"`
	Amount int64 `json:"amount"`
}

// Summary is the collaborator-facing wallet view: balance, counters and the
// pending queues. It is a read model; reads may lag in-flight transactions,
// committed balances never diverge from their ledger.
type Summary struct {
	WalletID string `json:"wallet_id"`
	OwnerID  string `json:"owner_id"`

	Balance        int64 `json:"balance"`
	TotalDeposited int64 `json:"total_deposited"`
	TotalSpent     int64 `json:"total_spent"`
	TotalWithdrawn int64 `json:"total_withdrawn"`

	IsFrozen     bool   `json:"is_frozen"`
	FrozenReason string `json:"frozen_reason,omitempty"`

	PendingDeposits    PendingBucket `json:"pending_deposits"`
	PendingWithdrawals PendingBucket `json:"pending_withdrawals"`

	GeneratedAt time.Time `json:"generated_at"`
}

// PlatformStats is the admin operations view.
type PlatformStats struct {
	PlatformBalance int64 `json:"platform_balance"`

	PendingDeposits      int `json:"pending_deposits"`
	PendingWithdrawals   int `json:"pending_withdrawals"`
	PendingVerifications int `json:"pending_verifications"`
	PendingPayouts       int `json:"pending_payouts"`
	PendingListings      int `json:"pending_listings"`

	GeneratedAt time.Time `json:"generated_at"`
}
