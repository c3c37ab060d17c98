package types

import (
	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
)

// StatusSnapshot is a point-in-time read of a payment's status from the
// backend. Snapshots carry no ordering guarantee beyond arrival order; a
// stale pending snapshot can arrive after progress was already observed.
type StatusSnapshot struct {
	Status        enums.RemoteStatus `json:"status"`
	PaidAmount    decimal.Decimal    `json:"paidAmount"`
	PaymentMethod string             `json:"paymentMethod"`
	Amount        decimal.Decimal    `json:"amount"`
	PaymentType   enums.PaymentType  `json:"paymentType"`
}
