package stub

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/internal/payment"
	"github.com/glowora/payconfirm/internal/watch"
	"github.com/glowora/payconfirm/pkg/enums"
	"github.com/glowora/payconfirm/pkg/gateway"
	"github.com/glowora/payconfirm/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "stub-test", Output: io.Discard})
}

func newStubServer(t *testing.T, params StoreParams) (*httptest.Server, *gateway.Client) {
	t.Helper()
	server, err := NewServer(ServerParams{
		Logger: testLogger(),
		Store:  NewStore(params),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	client, err := gateway.NewClient(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return ts, client
}

type channelSink struct {
	mu         sync.Mutex
	remaining  []string
	terminalCh chan payment.Outcome
}

func newChannelSink() *channelSink {
	return &channelSink{terminalCh: make(chan payment.Outcome, 1)}
}

func (s *channelSink) Remaining(formatted string) {
	s.mu.Lock()
	s.remaining = append(s.remaining, formatted)
	s.mu.Unlock()
}

func (s *channelSink) Terminal(outcome payment.Outcome) {
	s.terminalCh <- outcome
}

func runSession(t *testing.T, client *gateway.Client, referenceID string) payment.Outcome {
	t.Helper()

	intent, err := client.CreateIntent(context.Background(), gateway.CreateIntentRequest{
		ReferenceID: referenceID,
		PaymentType: enums.PaymentTypeBooking,
		Amount:      decimal.NewFromInt(250000),
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	sink := newChannelSink()
	session, err := watch.NewSession(watch.SessionParams{
		Logger:        testLogger(),
		Intent:        intent,
		Checker:       client,
		Sink:          sink,
		PollInterval:  10 * time.Millisecond,
		CountdownTick: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start session: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })

	select {
	case outcome := <-sink.terminalCh:
		return outcome
	case <-time.After(5 * time.Second):
		t.Fatalf("session never reached a terminal state")
		return payment.Outcome{}
	}
}

func TestEndToEndSuccessfulPayment(t *testing.T) {
	_, client := newStubServer(t, StoreParams{TTL: time.Minute, PendingPolls: 2})

	outcome := runSession(t, client, "appt-42")
	if outcome.State != enums.ScreenStatusSuccess {
		t.Fatalf("expected success, got %s", outcome.State)
	}
}

func TestEndToEndPartialRefund(t *testing.T) {
	_, client := newStubServer(t, StoreParams{TTL: time.Minute, PendingPolls: 1})

	outcome := runSession(t, client, "partial-7")
	if outcome.State != enums.ScreenStatusPartialRefund {
		t.Fatalf("expected partial_refund, got %s", outcome.State)
	}
	want := decimal.NewFromInt(50000)
	if !outcome.PaidAmount.Equal(want) {
		t.Fatalf("expected paid amount %s, got %s", want, outcome.PaidAmount)
	}
}

func TestEndToEndFailedPayment(t *testing.T) {
	_, client := newStubServer(t, StoreParams{TTL: time.Minute, PendingPolls: 0})

	outcome := runSession(t, client, "fail-3")
	if outcome.State != enums.ScreenStatusFailed {
		t.Fatalf("expected failed, got %s", outcome.State)
	}
}

func TestEndToEndStuckPaymentExpires(t *testing.T) {
	_, client := newStubServer(t, StoreParams{TTL: 60 * time.Millisecond, PendingPolls: 0})

	outcome := runSession(t, client, "stuck-9")
	if outcome.State != enums.ScreenStatusExpired {
		t.Fatalf("expected expired, got %s", outcome.State)
	}
}

func TestCancelEndpoint(t *testing.T) {
	_, client := newStubServer(t, StoreParams{TTL: time.Minute, PendingPolls: 5})

	_, err := client.CreateIntent(context.Background(), gateway.CreateIntentRequest{
		ReferenceID: "appt-55",
		PaymentType: enums.PaymentTypeBooking,
		Amount:      decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	if err := client.CancelAppointment(context.Background(), "appt-55"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := client.CancelAppointment(context.Background(), "appt-unknown"); err == nil {
		t.Fatalf("expected error for unknown appointment")
	}
}

func TestCreateIntentValidation(t *testing.T) {
	ts, _ := newStubServer(t, StoreParams{TTL: time.Minute})

	resp, err := http.Post(ts.URL+"/payment-intents", "application/json",
		strings.NewReader(`{"paymentType":"booking","amount":"100"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing reference, got %d", resp.StatusCode)
	}
}
