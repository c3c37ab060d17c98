package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/glowora/payconfirm/internal/payment"
	"github.com/glowora/payconfirm/internal/watch"
	"github.com/glowora/payconfirm/pkg/config"
	"github.com/glowora/payconfirm/pkg/enums"
	"github.com/glowora/payconfirm/pkg/gateway"
	"github.com/glowora/payconfirm/pkg/logger"
	"github.com/glowora/payconfirm/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "watcher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "watcher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	referenceID := flag.String("ref", "", "order/appointment reference to pay for")
	paymentType := flag.String("type", "booking", "payment type: order|booking|subscription|topup")
	amountRaw := flag.String("amount", "250000", "amount to pay")
	flag.Parse()

	ctx := context.Background()
	if *referenceID == "" {
		logg.Error(ctx, "missing -ref", errors.New("a reference id is required"))
		os.Exit(1)
	}
	parsedType, err := enums.ParsePaymentType(*paymentType)
	if err != nil {
		logg.Error(ctx, "invalid -type", err)
		os.Exit(1)
	}
	amount, err := decimal.NewFromString(*amountRaw)
	if err != nil {
		logg.Error(ctx, "invalid -amount", err)
		os.Exit(1)
	}

	client, err := gateway.NewClient(cfg.Gateway.BaseURL, gateway.WithTimeout(cfg.Gateway.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to build gateway client", err)
		os.Exit(1)
	}

	watchMetrics := metrics.NewWatchMetrics(prometheus.DefaultRegisterer)
	metricsSrv := maybeServeMetrics(ctx, logg, cfg.Metrics.Addr)

	intent, err := client.CreateIntent(ctx, gateway.CreateIntentRequest{
		ReferenceID: *referenceID,
		PaymentType: parsedType,
		Amount:      amount,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payment intent", err)
		os.Exit(1)
	}

	fmt.Printf("Transfer %s to %s (%s, %s)\n",
		intent.Banking.Amount, intent.Banking.AccountNumber, intent.Banking.AccountName, intent.Banking.BankName)
	fmt.Printf("QR: %s\n", intent.Banking.QRCodeURL)

	session, err := watch.NewSession(watch.SessionParams{
		Logger:        logg,
		Intent:        intent,
		Checker:       client,
		Sink:          &consoleSink{},
		Metrics:       watchMetrics,
		PollInterval:  cfg.Watch.PollInterval,
		CountdownTick: cfg.Watch.CountdownTick,
		CheckTimeout:  cfg.Watch.CheckTimeout,
	})
	if err != nil {
		logg.Error(ctx, "failed to build confirmation session", err)
		os.Exit(1)
	}
	if err := session.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start confirmation session", err)
		os.Exit(1)
	}

	guard, err := watch.NewGuard(watch.GuardParams{
		Logger:    logg,
		Source:    session,
		Confirmer: &stdinConfirmer{},
		Canceler:  &appointmentCanceler{client: client, referenceID: *referenceID},
	})
	if err != nil {
		logg.Error(ctx, "failed to build exit guard", err)
		os.Exit(1)
	}

	// Ctrl-C is this binary's back gesture: it runs through the guard
	// instead of killing the process outright.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-session.Done():
			printOutcome(session.Outcome())
			shutdown(ctx, logg, session, metricsSrv)
			return
		case <-sigCh:
			if guard.Attempt(ctx) {
				fmt.Println("\nleaving pending payment")
				shutdown(ctx, logg, session, metricsSrv)
				return
			}
		}
	}
}

func shutdown(ctx context.Context, logg *logger.Logger, session *watch.Session, metricsSrv *http.Server) {
	err := session.Close()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err = multierr.Append(err, metricsSrv.Shutdown(shutdownCtx))
	}
	if err != nil {
		logg.Error(ctx, "shutdown finished with errors", err)
	}
}

func maybeServeMetrics(ctx context.Context, logg *logger.Logger, addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()
	return srv
}

type consoleSink struct{}

func (c *consoleSink) Remaining(formatted string) {
	fmt.Printf("\rexpires in %s  ", formatted)
}

func (c *consoleSink) Terminal(outcome payment.Outcome) {
	fmt.Println()
}

func printOutcome(outcome payment.Outcome) {
	switch outcome.State {
	case enums.ScreenStatusSuccess:
		fmt.Println("payment confirmed")
	case enums.ScreenStatusPartialRefund:
		fmt.Printf("underpayment detected: %s was refunded to your wallet\n", outcome.PaidAmount)
	case enums.ScreenStatusExpired:
		fmt.Println("payment window expired")
	case enums.ScreenStatusFailed:
		fmt.Println("payment failed")
	}
}

type stdinConfirmer struct{}

func (s *stdinConfirmer) ConfirmLeave(ctx context.Context) (bool, error) {
	fmt.Print("\nLeaving cancels your reservation. Leave anyway? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

type appointmentCanceler struct {
	client      *gateway.Client
	referenceID string
}

func (a *appointmentCanceler) Cancel(ctx context.Context) error {
	return a.client.CancelAppointment(ctx, a.referenceID)
}
