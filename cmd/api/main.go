package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
	"ngo-connect/donation-portal/donation-portal-backend/internal/config"
	"ngo-connect/donation-portal/donation-portal-backend/internal/database"
	"ngo-connect/donation-portal/donation-portal-backend/internal/ledger"
	"ngo-connect/donation-portal/donation-portal-backend/internal/notifications"
	"ngo-connect/donation-portal/donation-portal-backend/internal/organization"
	"ngo-connect/donation-portal/donation-portal-backend/internal/payment"
	"ngo-connect/donation-portal/donation-portal-backend/internal/withdrawal"
	"ngo-connect/donation-portal/donation-portal-backend/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		logger.Fatal("load aws config", zap.Error(err))
	}
	uploads := storage.NewClient(awsCfg, cfg.Storage.Bucket)
	mailer := notifications.NewService(awsCfg, cfg.Email.Sender, cfg.Email.SendTimeout, logger)

	// Auth
	tokens := auth.NewTokens(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	otpStore := auth.NewOTPStore(rdb)
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, tokens, otpStore, mailer,
		auth.AdminCredentials{Email: cfg.Security.AdminEmail, Password: cfg.Security.AdminPassword},
		logger)
	mw := auth.NewMiddleware(tokens)

	// Organizations
	orgRepo := organization.NewRepository(db)
	orgService := organization.NewService(orgRepo, tokens, uploads, otpStore, mailer, logger)

	// Campaigns
	campaignRepo := campaign.NewRepository(db)
	names := nameResolver{users: authService, orgs: orgService}
	campaignService := campaign.NewService(campaignRepo, uploads, names, logger)

	// Payments
	gateway := payment.NewGatewayClient(cfg.Payments.GatewayBaseURL,
		cfg.Payments.GatewayKeyID, cfg.Payments.GatewaySecret)
	paymentService := payment.NewService(campaignRepo, gateway, cfg.Payments.GatewaySecret, logger)

	// Ledger and withdrawals
	balances := ledger.NewCalculator(campaignRepo, orgRepo, logger)
	withdrawalRepo := withdrawal.NewRepository(db)
	withdrawalService := withdrawal.NewService(withdrawalRepo, balances, mailer, logger)

	auditor := ledger.NewAuditor(campaignRepo, logger)
	if err := auditor.Start(); err != nil {
		logger.Fatal("start ledger auditor", zap.Error(err))
	}
	defer auditor.Stop()

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), corsMiddleware())

	api := r.Group("/api/v1")
	auth.NewHandler(authService).RegisterRoutes(api, mw)
	organization.NewHandler(orgService).RegisterRoutes(api, mw)
	campaign.NewHandler(campaignService).RegisterRoutes(api, mw)
	payment.NewHandler(paymentService).RegisterRoutes(api, mw)
	withdrawal.NewHandler(withdrawalService).RegisterRoutes(api, mw)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// nameResolver maps an authenticated principal to a display name for
// comment attribution.
type nameResolver struct {
	users *auth.Service
	orgs  *organization.Service
}

func (n nameResolver) ResolveName(ctx context.Context, p auth.Principal) (string, error) {
	switch p.Role {
	case auth.RoleOrganization:
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return "", err
		}
		org, err := n.orgs.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return org.Name, nil
	case auth.RoleAdmin:
		return "Admin", nil
	default:
		user, err := n.users.GetUser(ctx, p.ID)
		if err != nil {
			return "", err
		}
		return user.Name, nil
	}
}

func newLogger(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zapCfg.Level = lvl
	}
	logger, err := zapCfg.Build()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
