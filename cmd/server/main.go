package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kidhasia/misty-ems/internal/config"
	"github.com/kidhasia/misty-ems/internal/ems/entity"
	"github.com/kidhasia/misty-ems/internal/ems/handler"
	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/ems/service"
	"github.com/kidhasia/misty-ems/internal/middleware"
	"github.com/kidhasia/misty-ems/internal/shared/mail"
	"github.com/kidhasia/misty-ems/internal/shared/openai"
	"github.com/kidhasia/misty-ems/internal/storage"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting misty-ems service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Client{},
		&entity.Employee{},
		&entity.Task{},
		&entity.QCTask{},
		&entity.QCFeedback{},
		&entity.QCReport{},
		&entity.Assignment{},
		&entity.Card{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		zapLogger.Fatal("Failed to init storage", zap.Error(err))
	}

	summarizer := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout, zapLogger)
	mailer := mail.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, zapLogger)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cfg, summarizer, mailer, zapLogger)
	handlers := handler.NewHandlers(services, store, handler.NewHealthHandler(db, rdb), zapLogger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigin))
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, rdb, cfg, zapLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

// initDatabase keeps retrying until the database accepts connections, so
// the service can start before its database in a compose stack.
func initDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	var db *gorm.DB
	var err error
	for {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		logger.Warn("Database not ready, retrying",
			zap.Duration("retry_in", cfg.RetryInterval),
			zap.Error(err))
		time.Sleep(cfg.RetryInterval)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) {
	r.GET("/health", h.Health.Check)

	if cfg.Storage.Backend == "local" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	api := r.Group("/api/v1")

	// Public auth endpoints, rate limited per client IP.
	auth := api.Group("/auth")
	auth.Use(middleware.LoginRateLimit(rdb, cfg.RateLimit.LoginPerMinute, logger))
	{
		auth.POST("/client/register", h.Auth.RegisterClient)
		auth.POST("/client/login", h.Auth.LoginClient)
		auth.POST("/employee/register", h.Auth.RegisterEmployee)
		auth.POST("/employee/login", h.Auth.LoginEmployee)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/verify-code", h.Auth.VerifyResetCode)
		auth.POST("/reset-password", h.Auth.ResetPassword)
	}

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWT.Secret))

	// Client task registry. Clients own their tasks; staff can read them.
	tasks := authed.Group("/tasks")
	{
		tasks.POST("", middleware.RequireRole(entity.RoleClient), h.Task.Submit)
		tasks.GET("", h.Task.List)
		tasks.GET("/:id", h.Task.Get)
		tasks.PUT("/:id", middleware.RequireRole(entity.RoleClient), h.Task.Update)
		tasks.DELETE("/:id", middleware.RequireRole(entity.RoleClient), h.Task.Delete)
	}

	// QC review cycle.
	qc := authed.Group("/qc")
	qc.Use(middleware.RequireEmployee())
	{
		qc.POST("/tasks", h.Review.CreateQCTask)
		qc.GET("/tasks", h.Review.ListQCTasks)
		qc.GET("/tasks/:id", h.Review.GetQCTask)
		qc.DELETE("/tasks/:id", middleware.RequireRole(entity.RoleQualityControl), h.Review.DeleteQCTask)
		qc.PUT("/tasks/:id/status", middleware.RequireRole(entity.RoleQualityControl, entity.RoleGeneralManager), h.Review.Transition)
		qc.POST("/tasks/:id/report", middleware.RequireRole(entity.RoleQualityControl), h.Review.GenerateReport)
		qc.GET("/tasks/:id/reports", h.Review.ListReports)
		qc.GET("/tasks/:id/feedback", h.Review.ListFeedback)
		qc.POST("/feedback", h.Review.RecordFeedback)
		qc.PUT("/feedback/:id", h.Review.UpdateFeedback)
		qc.DELETE("/feedback/:id", h.Review.DeleteFeedback)
		qc.GET("/reports/export", middleware.RequireRole(entity.RoleQualityControl, entity.RoleGeneralManager), h.Review.ExportReports)
		qc.POST("/send-email", middleware.RequireRole(entity.RoleQualityControl), h.Review.SendMail)
	}

	// GM-to-PM assignment flow.
	assignments := authed.Group("/assignments")
	{
		assignments.POST("", middleware.RequireRole(entity.RoleGeneralManager), h.Review.Assign)
		assignments.GET("", middleware.RequireRole(entity.RoleProjectManager), h.Review.ListAssignments)
	}

	// Directories.
	authed.GET("/employees/project-managers",
		middleware.RequireRole(entity.RoleGeneralManager), h.Auth.ListProjectManagers)
	clients := authed.Group("/clients")
	clients.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		clients.GET("", h.Auth.ListClients)
		clients.GET("/:id", h.Auth.GetClient)
		clients.PUT("/:id", h.Auth.UpdateClient)
		clients.DELETE("/:id", h.Auth.DeleteClient)
	}

	// Kanban board. Open to every authenticated caller, clients included.
	cards := authed.Group("/cards")
	{
		cards.POST("", h.Card.Create)
		cards.GET("", h.Card.List)
		cards.PUT("/:id", h.Card.Update)
		cards.DELETE("/:id", h.Card.Delete)
	}
}
