package wallet

import "time"

// Wallet holds a user's spendable balance.
// Invariant: Balance must equal the running sum of the wallet's ledger entries.
// No code should ever mutate Balance without appending a corresponding entry.
//
// Wallets are created on first use and never deleted; administrative action
// may freeze them instead.
type Wallet struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`

	// Balance is in minor units (cents). Never negative.
	Balance int64 `json:"balance" db:"balance"`

	// Cumulative counters, also in minor units. They only grow.
	TotalDeposited int64 `json:"total_deposited" db:"total_deposited"`
	TotalSpent     int64 `json:"total_spent" db:"total_spent"`
	TotalWithdrawn int64 `json:"total_withdrawn" db:"total_withdrawn"`

	IsFrozen     bool   `json:"is_frozen" db:"is_frozen"`
	FrozenReason string `json:"frozen_reason,omitempty" db:"frozen_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PlatformOwnerID is the reserved owner of the commission wallet.
const PlatformOwnerID = "platform"

// LedgerEntry is an immutable, append-only record of one balance change.
// Entries are never updated or deleted; corrections are new offsetting entries.
//
// Invariants:
// - BalanceAfter = BalanceBefore + Amount
// - entries for a wallet are totally ordered by creation, so BalanceAfter of
//   entry n equals BalanceBefore of entry n+1.
type LedgerEntry struct {
	ID       string    `json:"id" db:"id"`
	WalletID string    `json:"wallet_id" db:"wallet_id"`
	Type     EntryType `json:"type" db:"type"`

	// Amount is signed: positive increases balance, negative decreases it.
	Amount        int64 `json:"amount" db:"amount"`
	BalanceBefore int64 `json:"balance_before" db:"balance_before"`
	BalanceAfter  int64 `json:"balance_after" db:"balance_after"`

	Description string `json:"description,omitempty" db:"description"`

	// Reference links the entry to the record that caused it
	// (a request, a listing purchase, ...).
	ReferenceType string `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID   string `json:"reference_id,omitempty" db:"reference_id"`

	// IdempotencyKey, when set, must be unique per wallet. It makes retried
	// money-posting operations (notably purchases) safe.
	IdempotencyKey string `json:"idempotency_key,omitempty" db:"idempotency_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EntryType string

const (
	EntryTypeDeposit    EntryType = "deposit"
	EntryTypeWithdrawal EntryType = "withdrawal"
	EntryTypePurchase   EntryType = "purchase"
	EntryTypeSale       EntryType = "sale"
	EntryTypeFee        EntryType = "fee"
	EntryTypeRefund     EntryType = "refund"
	EntryTypePayout     EntryType = "payout"
)
