package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/glowora/payconfirm/internal/stub"
	"github.com/glowora/payconfirm/pkg/config"
	"github.com/glowora/payconfirm/pkg/logger"
)

const stubIntentTTL = 15 * time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "stubd"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "stubd",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	server, err := stub.NewServer(stub.ServerParams{
		Logger: logg,
		Store:  stub.NewStore(stub.StoreParams{TTL: stubIntentTTL, PendingPolls: 2}),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build stub server", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Stub.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(logg.WithField(ctx, "addr", srv.Addr), "starting stub payments backend")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "stub server stopped unexpectedly", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "stub server shutdown failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "stub server shutting down gracefully")
}
