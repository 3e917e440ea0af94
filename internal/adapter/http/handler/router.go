package handler

import (
	"github.com/craigsandeman1/fitmom-payments/internal/adapter/http/middleware"
	redisStore "github.com/craigsandeman1/fitmom-payments/internal/adapter/storage/redis"
	"github.com/craigsandeman1/fitmom-payments/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ReconcileSvc   ports.ReconcileService
	CheckoutSvc    ports.CheckoutService
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	RoleLookup     ports.RoleLookup
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	TrustedProxies []string // proxies whose X-Forwarded-For is honored; empty = none
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// ClientIP feeds the notification origin allow-list, so forwarded-for
	// headers must only be believed from explicitly configured proxies.
	// With no proxies configured the TCP peer address is used as-is.
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.Fatal().Err(err).Msg("invalid trusted proxy configuration")
	}

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(64 << 10)) // 64 KB request body limit

	// Health check (verifies PostgreSQL and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Gateway callback (plain text, never rate limited) ---
	notifyHandler := NewNotifyHandler(deps.ReconcileSvc, deps.Logger)
	v1.POST("/payfast/notify", notifyHandler.Notify)

	// --- Public storefront routes ---
	paymentHandler := NewPaymentHandler(deps.CheckoutSvc)
	payments := v1.Group("/payments")
	{
		payments.POST("", rl("checkout"), paymentHandler.CreateCheckout)
		payments.GET("/status", rl("status"), paymentHandler.GetStatus)
	}

	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Admin routes (JWT + admin role) ---
	adminAuth := middleware.AdminAuth(deps.TokenSvc, deps.RoleLookup, deps.Logger)
	adminHandler := NewAdminHandler(deps.CheckoutSvc)
	admin := v1.Group("/admin", adminAuth)
	{
		admin.GET("/purchases", rl("admin"), adminHandler.ListPurchases)
	}

	return r
}
