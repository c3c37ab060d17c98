package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
	pkgerrors "github.com/glowora/payconfirm/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// BankingInfo carries the display-only transfer details for a pending
// payment: where to send the money and the QR payload encoding the transfer.
type BankingInfo struct {
	BankName      string          `json:"bankName" validate:"required"`
	AccountNumber string          `json:"accountNumber" validate:"required"`
	AccountName   string          `json:"accountName" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	QRCodeURL     string          `json:"qrCodeUrl"`
}

// PaymentIntent is the server-created payment handle a confirmation session
// attaches to. It is immutable once received; the payment code is the polling
// key and ExpiredAt bounds the whole session.
type PaymentIntent struct {
	PaymentCode string            `json:"paymentCode" validate:"required"`
	ExpiredAt   time.Time         `json:"expiredAt" validate:"required"`
	PaymentType enums.PaymentType `json:"paymentType" validate:"required"`
	ReferenceID string            `json:"referenceId"`
	Banking     BankingInfo       `json:"bankingInfo"`
}

// Validate reports whether the intent is usable for a confirmation session.
// A missing payment code or expiry is fatal: no timers may ever start.
func (i PaymentIntent) Validate() error {
	if err := validate.Struct(i); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment intent")
	}
	if !i.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type "+i.PaymentType.String())
	}
	if !i.Banking.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	return nil
}

// Expired reports whether the intent's deadline has passed at the given
// instant.
func (i PaymentIntent) Expired(now time.Time) bool {
	return !now.Before(i.ExpiredAt)
}
