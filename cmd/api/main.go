package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-ledger/internal/audit"
	"marketplace-ledger/internal/auth"
	"marketplace-ledger/internal/config"
	"marketplace-ledger/internal/httpapi"
	"marketplace-ledger/internal/listings"
	"marketplace-ledger/internal/pricing"
	"marketplace-ledger/internal/reporting"
	"marketplace-ledger/internal/requests"
	"marketplace-ledger/internal/settlement"
	"marketplace-ledger/internal/wallet"
	"marketplace-ledger/pkg/logger"
	"marketplace-ledger/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	fees := pricing.Schedule{
		CommissionBps:     cfg.Fees.CommissionBps,
		WithdrawalFeeBps:  cfg.Fees.WithdrawalFeeBps,
		WithdrawalFeeFlat: cfg.Fees.WithdrawalFeeFlat,
		VerificationFee:   cfg.Fees.VerificationFee,
		MinDeposit:        cfg.Fees.MinDeposit,
		MinWithdrawal:     cfg.Fees.MinWithdrawal,
	}

	walletStore := wallet.NewPostgresStore(db)
	requestStore := requests.NewPostgresStore(db)
	listingStore := listings.NewPostgresStore(db)
	receiptStore := settlement.NewPostgresReceiptStore(db)
	auditRepo := audit.NewPostgresRepo(db)

	wallets := wallet.NewService(walletStore)

	// The platform commission wallet must exist before the first settlement.
	platform, err := wallets.Ensure(rootCtx, wallet.PlatformOwnerID)
	if err != nil {
		log.Error("platform wallet init failed", "err", err)
		os.Exit(1)
	}

	auditSvc := audit.NewService(auditRepo)
	requestSvc := requests.NewService(requestStore, wallets, fees, auditSvc)
	listingSvc := listings.NewService(listingStore, wallets, auditSvc)
	settlementSvc := settlement.NewService(wallets, listingSvc, receiptStore, fees, platform.ID)
	reportSvc := reporting.NewService(wallets, requestStore, listingStore, platform.ID).WithCache(rdb)

	h := httpapi.Handlers{
		Auth:       authManager,
		Wallets:    wallets,
		Requests:   requestSvc,
		Listings:   listingSvc,
		Settlement: settlementSvc,
		Reports:    reportSvc,
		Audit:      auditSvc,
		Redis:      rdb,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
