package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"pouch/internal/config"
	"pouch/internal/handler"
	"pouch/internal/logging"
	"pouch/internal/middleware"
	"pouch/internal/repository"
	"pouch/internal/service/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("pouch-api", cfg.LogLevel, cfg.AppEnv)

	treasuryID, err := uuid.Parse(cfg.TreasuryAccountID)
	if err != nil {
		slog.Error("invalid treasury account id", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var cache *wallet.BalanceCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cache = wallet.NewBalanceCache(rdb, time.Duration(cfg.BalanceCacheTTLSec)*time.Second)
		slog.Info("balance cache enabled", "addr", cfg.RedisAddr)
	}

	accounts := repository.NewAccountRepository(db)
	ledger := repository.NewLedgerRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	walletSvc := wallet.NewService(repository.NewDB(db), accounts, ledger, cache)

	walletHandler := handler.NewWalletHandler(walletSvc, treasuryID)
	healthHandler := handler.NewHealthHandler(db)

	idempotencyTTL := time.Duration(cfg.IdempotencyTTLHours) * time.Hour
	idem := middleware.Idempotency(idempotency, idempotencyTTL)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/wallet/balance/{userId}", walletHandler.Balances)
	mux.Handle("POST /api/wallet/transact", idem(http.HandlerFunc(walletHandler.Transact)))
	mux.HandleFunc("GET /api/wallet/transactions/{id}", walletHandler.Transaction)
	mux.HandleFunc("GET /api/wallet/accounts/{id}/entries", walletHandler.AccountEntries)

	root := middleware.Recovery(middleware.Tracing(middleware.Logging(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go runIdempotencyJanitor(janitorCtx, idempotency)

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopJanitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// Idempotency records outlive their TTL only until the next sweep; the
// table stays bounded instead of growing forever.
func runIdempotencyJanitor(ctx context.Context, repo *repository.IdempotencyRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.CleanExpired(ctx)
			if err != nil {
				slog.Error("idempotency cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired idempotency records removed", "count", n)
			}
		}
	}
}
