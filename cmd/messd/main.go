package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	mhttp "github.com/rmess/messd/internal/adapter/http"
	"github.com/rmess/messd/internal/adapter/jsonfile"
	mnats "github.com/rmess/messd/internal/adapter/nats"
	"github.com/rmess/messd/internal/adapter/otel"
	"github.com/rmess/messd/internal/adapter/ristretto"
	"github.com/rmess/messd/internal/adapter/ws"
	"github.com/rmess/messd/internal/config"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/logger"
	"github.com/rmess/messd/internal/middleware"
	"github.com/rmess/messd/internal/port/broadcast"
	"github.com/rmess/messd/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLogger := logger.New(cfg.Logging)
	defer closeLogger.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"store_path", cfg.Store.Path,
		"log_level", cfg.Logging.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	// State document
	store, err := jsonfile.Open(cfg.Store.Path, service.Bootstrap)
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	slog.Info("state loaded", "path", cfg.Store.Path)

	// Balance cache
	cache, err := ristretto.New(cfg.Cache.MaxCostBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// Tracing (disabled when no endpoint is configured)
	shutdownTracer, err := otel.InitTracer(ctx, cfg.Logging.Service, cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	// Broadcast fan-out: websocket hub always, NATS when configured.
	hub := ws.NewHub()
	broadcasters := []broadcast.Broadcaster{hub}
	if cfg.NATS.URL != "" {
		queue, err := mnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		broadcasters = append(broadcasters, queue)
	}

	// --- Services ---
	tariff := billing.Tariff{
		meal.Breakfast: decimal.NewFromInt(cfg.Billing.BreakfastCost),
		meal.Dinner:    decimal.NewFromInt(cfg.Billing.DinnerCost),
	}

	userSvc := service.NewUserService(store)
	settingsSvc := service.NewSettingsService(store)
	attendanceSvc := service.NewAttendanceService(store, cache, tariff)
	ledgerSvc := service.NewLedgerService(store, cache)
	cashboxSvc := service.NewCashboxService(store)
	notificationSvc := service.NewNotificationService(store, broadcasters)
	menuSvc := service.NewMenuService(store, notificationSvc)
	registrationSvc := service.NewRegistrationService(store)
	historySvc := service.NewHistoryService(store)

	// --- HTTP ---
	handlers := mhttp.NewHandlers(
		userSvc, settingsSvc, attendanceSvc, ledgerSvc, cashboxSvc,
		menuSvc, notificationSvc, registrationSvc, historySvc,
	)

	r := chi.NewRouter()

	// Middleware
	r.Use(mhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(mhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.TenantID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))

	// Health endpoint
	r.Get("/health", healthHandler(hub))

	// WebSocket endpoint
	r.Get("/ws", hub.HandleWS)

	// API routes
	mhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(hub *ws.Hub) http.HandlerFunc {
	type healthStatus struct {
		Status        string `json:"status"`
		WSConnections int    `json:"wsConnections"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:        "ok",
			WSConnections: hub.ConnectionCount(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
