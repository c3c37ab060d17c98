package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
)

// CreateIntentRequest asks the backend to open a payment intent for an order,
// booking, subscription or wallet top-up.
type CreateIntentRequest struct {
	ReferenceID string            `json:"referenceId"`
	PaymentType enums.PaymentType `json:"paymentType"`
	Amount      decimal.Decimal   `json:"amount"`
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
