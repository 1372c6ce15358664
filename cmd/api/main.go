package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"calc-server/internal/app"
	"calc-server/internal/config"
	"calc-server/internal/observability"
	"calc-server/internal/server"
)

func main() {

	ctx := context.Background()

	// Config
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Telemetry
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(ctx)

	// Calculator
	a, err := app.Open(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("opening calculator", zap.Error(err))
	}
	defer a.Close()

	stopTracking, err := instrument(a)
	if err != nil {
		observability.Logger.Fatal("registering calculator metrics", zap.Error(err))
	}
	defer stopTracking()

	// Router
	router := server.NewRouter(server.Deps{
		Calculator: a.Machine,
		Theme:      a.Theme,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.Store),
			zap.Int("history_entries", a.History.Len()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("shutdown", zap.Error(err))
	}
}
