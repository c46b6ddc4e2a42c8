package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chainpay.backend/internal/interfaces/http/handlers"
	"chainpay.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	paymentHandler  *handlers.PaymentHandler
	merchantHandler *handlers.MerchantHandler
	walletHandler   *handlers.WalletHandler
	webhookHandler  *handlers.WebhookHandler
	authMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Merchant onboarding (public)
		v1.POST("/merchants", d.merchantHandler.CreateMerchant)

		// Merchant profile (protected)
		merchants := v1.Group("/merchants")
		merchants.Use(d.authMiddleware)
		{
			merchants.GET("/me", d.merchantHandler.GetMerchant)
		}

		// Payment routes (protected, merchant-facing)
		payments := v1.Group("/payments")
		payments.Use(d.authMiddleware)
		{
			payments.POST("", middleware.IdempotencyMiddleware(), d.paymentHandler.CreatePayment)
			payments.GET("", d.paymentHandler.ListPayments)
			payments.GET("/:id", d.paymentHandler.GetPayment)
			payments.POST("/:id/webhooks/resend", d.webhookHandler.ResendWebhook)
		}

		// Webhook delivery log (protected)
		webhooks := v1.Group("/webhooks")
		webhooks.Use(d.authMiddleware)
		{
			webhooks.GET("/deliveries", d.webhookHandler.ListDeliveries)
		}

		// Wallet directory (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.POST("", d.walletHandler.AddWallet)
			wallets.GET("", d.walletHandler.ListWallets)
		}

		// Checkout routes (public, payer-facing)
		pay := v1.Group("/pay")
		{
			pay.GET("/:id", d.paymentHandler.GetPublicPayment)
			pay.POST("/:id/select", d.paymentHandler.SelectAsset)
			pay.GET("/:id/status", d.paymentHandler.GetStatus)
			pay.POST("/:id/check", d.paymentHandler.CheckNow)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
