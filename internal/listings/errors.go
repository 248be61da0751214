package listings

import "errors"

var (
	ErrNotFound          = errors.New("listing not found")
	ErrInvalidPrice      = errors.New("listing price must be positive")
	ErrInvalidTransition = errors.New("invalid listing state transition")

	// ErrIncompleteApproval rejects an approval that would leave the listing
	// unpurchasable: checkout url and provider must come with it.
	ErrIncompleteApproval = errors.New("approval requires checkout url and provider")

	ErrReasonRequired = errors.New("rejection requires a reason")
)
