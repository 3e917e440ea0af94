package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craigsandeman1/fitmom-payments/config"
	httpHandler "github.com/craigsandeman1/fitmom-payments/internal/adapter/http/handler"
	"github.com/craigsandeman1/fitmom-payments/internal/adapter/mail"
	pgStorage "github.com/craigsandeman1/fitmom-payments/internal/adapter/storage/postgres"
	redisStorage "github.com/craigsandeman1/fitmom-payments/internal/adapter/storage/redis"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"
	"github.com/craigsandeman1/fitmom-payments/internal/service"
	"github.com/craigsandeman1/fitmom-payments/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting FitMom payments service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	purchaseRepo := pgStorage.NewPurchaseRepo(pool)
	itnLogRepo := pgStorage.NewITNLogRepo(pool)
	userRepo := pgStorage.NewUserRepo(pool)
	roleRepo := pgStorage.NewRoleRepo(pool)

	// Initialize Redis stores
	notificationCache := redisStorage.NewNotificationCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	sigSvc := service.NewPayFastSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	sender := mail.NewSMTPSender(cfg.Mail, log)

	// Initialize business services
	reconcileSvc := service.NewReconcileService(
		purchaseRepo,
		itnLogRepo,
		notificationCache,
		sender,
		sigSvc,
		service.ReconcileConfig{
			MerchantID:         cfg.PayFast.MerchantID,
			Passphrase:         cfg.PayFast.Passphrase,
			TrustedIPs:         cfg.PayFast.TrustedIPs,
			SkipOriginCheck:    cfg.PayFast.SkipOriginCheck,
			OperatorRecipients: cfg.Mail.OperatorRecipients,
		},
		log,
	)
	checkoutSvc := service.NewCheckoutService(
		purchaseRepo,
		sigSvc,
		service.CheckoutConfig{
			MerchantID:  cfg.PayFast.MerchantID,
			MerchantKey: cfg.PayFast.MerchantKey,
			Passphrase:  cfg.PayFast.Passphrase,
			ProcessURL:  cfg.PayFast.ProcessURL,
			ReturnURL:   cfg.PayFast.ReturnURL,
			CancelURL:   cfg.PayFast.CancelURL,
			NotifyURL:   cfg.PayFast.NotifyURL,
		},
		log,
	)
	authSvc := service.NewAuthService(userRepo, roleRepo, hashSvc, tokenSvc, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ReconcileSvc:   reconcileSvc,
		CheckoutSvc:    checkoutSvc,
		AuthSvc:        authSvc,
		TokenSvc:       tokenSvc,
		RoleLookup:     roleRepo,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
