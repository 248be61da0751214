package wallet

import "errors"

var (
	ErrNotFound            = errors.New("wallet not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrFrozenWallet        = errors.New("wallet is frozen")

	// ErrDuplicateEntry is returned when a ledger entry with the same
	// idempotency key already exists for the wallet.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")
)
