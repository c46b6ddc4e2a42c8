package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chainpay.backend/internal/config"
	"chainpay.backend/internal/domain/entities"
	"chainpay.backend/internal/infrastructure/blockchain"
	"chainpay.backend/internal/infrastructure/jobs"
	"chainpay.backend/internal/infrastructure/pricing"
	"chainpay.backend/internal/infrastructure/repositories"
	"chainpay.backend/internal/interfaces/http/handlers"
	"chainpay.backend/internal/interfaces/http/middleware"
	"chainpay.backend/internal/usecases"
	"chainpay.backend/pkg/jwt"
	"chainpay.backend/pkg/logger"
	"chainpay.backend/pkg/metrics"
	"chainpay.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	merchantRepo := repositories.NewMerchantRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	paymentRepo := repositories.NewPaymentRequestRepository(db)
	deliveryRepo := repositories.NewWebhookDeliveryRepository(db)

	// Metrics
	recorder := metrics.NewPrometheusRecorder()

	// Chain data sources
	clientFactory := blockchain.NewClientFactory(cfg.Chains, cfg.Reconcile.MatcherTimeout)
	oracleClient := pricing.NewCoinGeckoClient(cfg.Oracle.BaseURL, cfg.Oracle.Timeout)

	// Core domain services
	assets := usecases.NewAssetRegistry()
	quotes := usecases.NewQuoteManager(oracleClient, cfg.Oracle.QuoteTTL, recorder)

	dispatcher := usecases.NewWebhookDispatcher(
		merchantRepo,
		deliveryRepo,
		paymentRepo,
		cfg.Webhook.Timeout,
		cfg.Webhook.MaxAttempts,
		cfg.Webhook.Backoff,
		recorder,
	)

	matchers := usecases.NewMatcherRegistry(assets)
	historyFor := func(network string) (usecases.AccountHistory, error) {
		return clientFactory.GetExplorer(network)
	}
	epsilon, err := decimal.NewFromString(cfg.Reconcile.SPLEpsilon)
	if err != nil {
		return fmt.Errorf("invalid SPL epsilon: %w", err)
	}
	threshold := int64(cfg.Reconcile.ConfirmationThreshold)
	solanaReader := clientFactory.GetSolana()
	matchers.Register(entities.NetworkFamilyEVM, entities.AssetKindToken,
		usecases.NewEVMMatcher(historyFor, entities.AssetKindToken, threshold))
	matchers.Register(entities.NetworkFamilyEVM, entities.AssetKindNative,
		usecases.NewEVMMatcher(historyFor, entities.AssetKindNative, threshold))
	matchers.Register(entities.NetworkFamilySolana, entities.AssetKindToken,
		usecases.NewSolanaMatcher(solanaReader, entities.AssetKindToken, cfg.Reconcile.SignaturePageSize, epsilon))
	matchers.Register(entities.NetworkFamilySolana, entities.AssetKindNative,
		usecases.NewSolanaMatcher(solanaReader, entities.AssetKindNative, cfg.Reconcile.SignaturePageSize, epsilon))

	reconciler := usecases.NewReconcilerUsecase(paymentRepo, matchers, dispatcher, cfg.Reconcile, recorder)
	paymentUsecase := usecases.NewPaymentUsecase(paymentRepo, walletRepo, assets, quotes, cfg.Reconcile.ExpiryWindow)
	merchantUsecase := usecases.NewMerchantUsecase(merchantRepo)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, assets)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(paymentUsecase, reconciler)
	merchantHandler := handlers.NewMerchantHandler(merchantUsecase, jwtService)
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	webhookHandler := handlers.NewWebhookHandler(dispatcher)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconcileJob := jobs.NewReconcileJob(reconciler, cfg.Reconcile.SweepInterval)
	go reconcileJob.Start(ctx)

	requoteJob := jobs.NewRequoteJob(paymentUsecase, cfg.Reconcile.RequoteInterval, cfg.Oracle.QuoteTTL)
	go requoteJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		paymentHandler:  paymentHandler,
		merchantHandler: merchantHandler,
		walletHandler:   walletHandler,
		webhookHandler:  webhookHandler,
		authMiddleware:  authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		reconcileJob.Stop()
		requoteJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("Chainpay backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
