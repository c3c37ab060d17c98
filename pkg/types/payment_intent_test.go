package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
	pkgerrors "github.com/glowora/payconfirm/pkg/errors"
)

func validIntent() PaymentIntent {
	return PaymentIntent{
		PaymentCode: "PAY-8f2c",
		ExpiredAt:   time.Now().Add(15 * time.Minute),
		PaymentType: enums.PaymentTypeBooking,
		ReferenceID: "appt-42",
		Banking: BankingInfo{
			BankName:      "Glow Bank",
			AccountNumber: "0012345678",
			AccountName:   "GLOWORA PTE LTD",
			Amount:        decimal.NewFromInt(250000),
			QRCodeURL:     "https://cdn.glowora.test/qr/PAY-8f2c.png",
		},
	}
}

func TestValidateAcceptsCompleteIntent(t *testing.T) {
	if err := validIntent().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBrokenIntents(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PaymentIntent)
	}{
		{name: "missing payment code", mutate: func(i *PaymentIntent) { i.PaymentCode = "" }},
		{name: "missing expiry", mutate: func(i *PaymentIntent) { i.ExpiredAt = time.Time{} }},
		{name: "unknown payment type", mutate: func(i *PaymentIntent) { i.PaymentType = "donation" }},
		{name: "zero amount", mutate: func(i *PaymentIntent) { i.Banking.Amount = decimal.Zero }},
		{name: "missing bank name", mutate: func(i *PaymentIntent) { i.Banking.BankName = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent := validIntent()
			tc.mutate(&intent)
			err := intent.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	intent := validIntent()
	if intent.Expired(intent.ExpiredAt.Add(-time.Second)) {
		t.Fatalf("intent should not be expired before the deadline")
	}
	if !intent.Expired(intent.ExpiredAt) {
		t.Fatalf("intent is expired exactly at the deadline")
	}
	if !intent.Expired(intent.ExpiredAt.Add(time.Second)) {
		t.Fatalf("intent is expired after the deadline")
	}
}
