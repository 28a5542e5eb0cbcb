package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/guardops-backend/internal/config"
	"github.com/cmlabs-hris/guardops-backend/internal/domain/access"
	appHTTP "github.com/cmlabs-hris/guardops-backend/internal/handler/http"
	"github.com/cmlabs-hris/guardops-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/cron"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/database"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/mailqueue"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/oauth"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/sse"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/storage"
	"github.com/cmlabs-hris/guardops-backend/internal/repository/postgresql"
	auditService "github.com/cmlabs-hris/guardops-backend/internal/service/audit"
	serviceAuth "github.com/cmlabs-hris/guardops-backend/internal/service/auth"
	expenseService "github.com/cmlabs-hris/guardops-backend/internal/service/expense"
	"github.com/cmlabs-hris/guardops-backend/internal/service/file"
	positionService "github.com/cmlabs-hris/guardops-backend/internal/service/position"
	scheduleService "github.com/cmlabs-hris/guardops-backend/internal/service/schedule"
	siteService "github.com/cmlabs-hris/guardops-backend/internal/service/site"
	userService "github.com/cmlabs-hris/guardops-backend/internal/service/user"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.App)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Durations were checked by config.Validate.
	accessExp, _ := time.ParseDuration(cfg.JWT.AccessExpiration)
	refreshExp, _ := time.ParseDuration(cfg.JWT.RefreshExpiration)

	var revocations jwt.RevocationStore
	if addr := cfg.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Error("Error connecting to redis", "addr", addr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		revocations = jwt.NewRedisRevocationStore(rdb)
		logger.Info("Token revocation backed by redis", "addr", addr)
	} else {
		logger.Warn("REDIS_HOST not set, token revocation is process-local")
	}

	var mailPublisher mailqueue.Publisher = mailqueue.NoopPublisher{}
	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("Error connecting to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Error("Error opening RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer ch.Close()

		if _, err := mailqueue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logger.Error("Error declaring mail queue", "queue", cfg.RabbitMQ.Queue, "error", err)
			os.Exit(1)
		}
		mailPublisher = mailqueue.NewAMQPPublisher(ch, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PublishTimeout)
	} else {
		logger.Warn("RABBITMQ_DSN not set, mail notifications are disabled")
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		logger.Error("Failed to initialize local storage", "error", err)
		os.Exit(1)
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	tenantRepo := postgresql.NewTenantRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	siteRepo := postgresql.NewSiteRepository(db)
	positionRepo := postgresql.NewPositionRepository(db)
	slotRepo := postgresql.NewSlotRepository(db)
	expenseRepo := postgresql.NewExpenseRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	authorizer := access.NewAuthorizer()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessExp, refreshExp, revocations)

	var googleService oauth.GoogleService
	if cfg.GoogleEnabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	auditSvc := auditService.NewAuditService(auditRepo)
	fileService := file.NewFileService(fileStorage)
	authService := serviceAuth.NewAuthService(txManager, userRepo, tenantRepo, JWTService, JWTRepository, mailPublisher)
	userSvc := userService.NewUserService(txManager, userRepo, auditSvc, mailPublisher)
	siteSvc := siteService.NewSiteService(txManager, siteRepo, auditSvc)
	positionSvc := positionService.NewPositionService(txManager, siteRepo, positionRepo, auditSvc)
	scheduleSvc := scheduleService.NewScheduleService(txManager, siteRepo, positionRepo, slotRepo, auditSvc)
	eventHub := sse.NewHub()
	expenseSvc := expenseService.NewExpenseService(txManager, expenseRepo, userRepo, auditSvc, authorizer, fileService, mailPublisher, eventHub)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			UploadsDir:     cfg.Storage.BasePath,
		},
		logger,
		JWTService,
		authorizer,
		middleware.NewTenantMiddleware(tenantRepo),
		appHTTP.Handlers{
			Auth:     appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL),
			User:     appHTTP.NewUserHandler(userSvc),
			Site:     appHTTP.NewSiteHandler(siteSvc),
			Position: appHTTP.NewPositionHandler(positionSvc),
			Schedule: appHTTP.NewScheduleHandler(scheduleSvc),
			Expense:  appHTTP.NewExpenseHandler(expenseSvc),
			Audit:    appHTTP.NewAuditHandler(auditSvc),
			Event:    appHTTP.NewEventHandler(eventHub),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler()
	cron.NewAuthJobs(authService).RegisterJobs(scheduler)
	scheduler.Start(ctx)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}
	// Shutdown does not cancel request contexts, so open event streams are ended here.
	server.RegisterOnShutdown(eventHub.Close)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	scheduler.Stop()
	logger.Info("Server stopped")
}
