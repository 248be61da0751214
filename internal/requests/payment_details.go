package requests

import "strings"

// Payment methods. Keep these stable; they are part of the API contract.
const (
	MethodMobileMoney = "mobile_money"
	MethodCrypto      = "crypto"
)

// PaymentDetails is a tagged variant keyed by method. Exactly the variant
// matching the method must be populated; validation happens at the boundary,
// before anything enters the workflow engine.
type PaymentDetails struct {
	MobileMoney *MobileMoneyDetails `json:"mobile_money,omitempty"`
	Crypto      *CryptoDetails      `json:"crypto,omitempty"`
}

type MobileMoneyDetails struct {
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phone_number"`
}

type CryptoDetails struct {
	Address string `json:"address"`
	Network string `json:"network"`
}

// Validate checks that the details match the declared method.
func (d PaymentDetails) Validate(method string) error {
	switch method {
	case MethodMobileMoney:
		if d.Crypto != nil {
			return ErrInvalidPaymentDetails
		}
		if d.MobileMoney == nil ||
			strings.TrimSpace(d.MobileMoney.Provider) == "" ||
			strings.TrimSpace(d.MobileMoney.PhoneNumber) == "" {
			return ErrInvalidPaymentDetails
		}
		return nil
	case MethodCrypto:
		if d.MobileMoney != nil {
			return ErrInvalidPaymentDetails
		}
		if d.Crypto == nil ||
			strings.TrimSpace(d.Crypto.Address) == "" ||
			strings.TrimSpace(d.Crypto.Network) == "" {
			return ErrInvalidPaymentDetails
		}
		return nil
	default:
		return ErrInvalidPaymentDetails
	}
}
