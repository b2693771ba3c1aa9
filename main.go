package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/yashrajoria/storefront/clients"
	"github.com/yashrajoria/storefront/config"
	"github.com/yashrajoria/storefront/database"
	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/logger"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/navigation"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/routes"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/store"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── AWS (Secrets, CloudWatch Logs, Metrics, S3) ──
	var awsCfg sdkaws.Config
	awsReady := false
	if cfg.SecretName != "" || cfg.CloudWatchEnabled || cfg.S3Bucket != "" {
		c, err := awspkg.LoadAWSConfig(ctx)
		if err != nil {
			log.Printf("failed to load AWS config: %v", err)
		} else {
			awsCfg, awsReady = c, true
		}
	}

	if cfg.SecretName != "" && awsReady {
		settings, err := awspkg.NewSecretsClient(awsCfg).GetSettings(ctx, cfg.SecretName)
		if err != nil {
			log.Printf("using environment settings: %v", err)
		} else {
			cfg.ApplySecrets(settings)
		}
	}

	var sink *awspkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled && awsReady {
		s, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, "storefront")
		if err != nil {
			log.Printf("CloudWatch Logs init failed: %v", err)
		} else {
			sink = s
		}
	}

	var zapLogger *zap.Logger
	var err error
	if sink != nil {
		zapLogger, err = logger.Initialize(cfg.Env, sink)
	} else {
		zapLogger, err = logger.Initialize(cfg.Env, nil)
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = zapLogger.Sync() }()

	metrics := awspkg.NopMetrics()
	if cfg.CloudWatchEnabled && awsReady {
		metrics = awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, true)
		zapLogger.Info("CloudWatch Metrics enabled", zap.String("namespace", cfg.CloudWatchNamespace))
	}

	var uploader services.Uploader
	if cfg.S3Bucket != "" && awsReady {
		uploader = awspkg.NewImageUploader(awsCfg, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSEndpoint)
		zapLogger.Info("Image uploads enabled", zap.String("bucket", cfg.S3Bucket))
	}

	// ── Services and state ──
	api := clients.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout, zapLogger)
	authService := services.NewAuthService(api, zapLogger)
	productService := services.NewProductService(api, cfg.DefaultCurrency, cfg.ProductPageSize, zapLogger)
	orderService := services.NewOrderService(api, cfg.DefaultCurrency, cfg.OrderPageSize, zapLogger)
	imageService := services.NewImageService(uploader, zapLogger)

	sessions := store.NewSessionStore(authService)
	cart := store.NewCartStore()
	nav := navigation.New(sessions, zapLogger)
	defer nav.Close()
	checkout := services.NewCheckout(orderService, cart, metrics, zapLogger)

	// Cart snapshots are optional; the storefront works without Redis.
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, zapLogger)
		if err != nil {
			zapLogger.Warn("Cart snapshots disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cartSync := database.NewCartSync(database.NewCartRepository(redisClient, cfg.CartTTL), cart, sessions, zapLogger)
			cartSync.Start()
			defer cartSync.Stop()
		}
	}

	// ── HTTP ──
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.RequestLogger(zapLogger),
		middleware.Metrics(metrics),
		apperrors.ErrorMiddleware(),
	)

	routes.Register(r, routes.Dependencies{
		Auth:          authService,
		Products:      productService,
		Orders:        orderService,
		Images:        imageService,
		Checkout:      checkout,
		Sessions:      sessions,
		Cart:          cart,
		Navigator:     nav,
		AuthLimiter:   middleware.NewRateLimiter(ctx, cfg.AuthRatePerMinute, cfg.AuthRateBurst, 5*time.Minute),
		OrderPageSize: cfg.OrderPageSize,
		Logger:        zapLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Storefront is running", zap.String("port", cfg.Port), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zapLogger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Shutdown error", zap.Error(err))
	}
	zapLogger.Info("Server shutdown complete")
}
