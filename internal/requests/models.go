package requests

import "time"

// Request is one admin-mediated money request. All four kinds share the same
// lifecycle shape; Kind decides which transitions exist and whether funds are
// reserved at submission.
//
// Reserve-on-submit: withdrawal, payout and verification requests debit the
// wallet when the request is created, so the money cannot be spent twice
// during the review window. Approval therefore performs no further balance
// change; rejection and cancellation refund the exact reserved amount.
// Deposits are the reverse: the user-supplied proof is unverified, so nothing
// is credited until an admin approves.
type Request struct {
	ID       string `json:"id" db:"id"`
	Kind     Kind   `json:"kind" db:"kind"`
	WalletID string `json:"wallet_id" db:"wallet_id"`

	// Amount is the requested amount in minor units. For withdrawals this is
	// the reserved (debited) amount; Fee and NetAmount describe the split the
	// payout side will see.
	Amount    int64 `json:"amount" db:"amount"`
	Fee       int64 `json:"fee,omitempty" db:"fee"`
	NetAmount int64 `json:"net_amount,omitempty" db:"net_amount"`

	Method         string         `json:"method,omitempty" db:"method"`
	PaymentDetails PaymentDetails `json:"payment_details,omitempty" db:"payment_details"`

	// ExternalReference is the user-supplied payment proof on deposits.
	ExternalReference string `json:"external_reference,omitempty" db:"external_reference"`

	Status       Status `json:"status" db:"status"`
	AdminNotes   string `json:"admin_notes,omitempty" db:"admin_notes"`
	RejectReason string `json:"reject_reason,omitempty" db:"reject_reason"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty" db:"decided_at"`
}

type Kind string

const (
	KindDeposit      Kind = "deposit"
	KindWithdrawal   Kind = "withdrawal"
	KindVerification Kind = "verification"
	KindPayout       Kind = "payout"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"

	// Withdrawal-only admin stages: approval moves the request to processing
	// while the transfer is executed, completion closes it. Neither touches
	// the balance; the reservation already did.
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// reserved reports whether this kind debits the wallet at submission.
func (k Kind) reserved() bool {
	return k == KindWithdrawal || k == KindPayout || k == KindVerification
}

// cancellable reports whether the owner may cancel a pending request.
func (k Kind) cancellable() bool {
	return k == KindWithdrawal || k == KindPayout
}
