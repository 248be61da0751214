package requests

import "errors"

var (
	ErrNotFound = errors.New("request not found")

	// ErrInvalidTransition guards every admin/owner transition: acting on a
	// non-pending request (double approval, cancel after decision) is
	// rejected, not silently repeated.
	ErrInvalidTransition = errors.New("invalid request state transition")

	ErrBelowMinimum          = errors.New("amount below minimum")
	ErrNotOwner              = errors.New("request belongs to another user")
	ErrInvalidPaymentDetails = errors.New("payment details do not match method")
)
