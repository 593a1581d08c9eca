package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/techfront-institute/academy-api/api/swagger"
	"github.com/techfront-institute/academy-api/internal/handler"
	"github.com/techfront-institute/academy-api/internal/middleware"
	"github.com/techfront-institute/academy-api/internal/repository"
	"github.com/techfront-institute/academy-api/internal/service"
	"github.com/techfront-institute/academy-api/pkg/cache"
	"github.com/techfront-institute/academy-api/pkg/config"
	"github.com/techfront-institute/academy-api/pkg/database"
	"github.com/techfront-institute/academy-api/pkg/jobs"
	"github.com/techfront-institute/academy-api/pkg/logger"
	corsmiddleware "github.com/techfront-institute/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/techfront-institute/academy-api/pkg/middleware/requestid"
	"github.com/techfront-institute/academy-api/pkg/storage"
)

// @title TechFront Academy API
// @version 1.0.0
// @description Administration dashboard backend: fee ledger, enrollments and reporting
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, analytics cache disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		AccessExpiry:  cfg.JWT.Expiration,
		RefreshExpiry: cfg.JWT.RefreshExpiration,
		Issuer:        "academy-api",
	})
	userSvc := service.NewUserService(userRepo, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, validate, logr)
	ledgerSvc := service.NewLedgerService(feeRepo, studentRepo, logr)
	analyticsSvc := service.NewAnalyticsService(ledgerSvc, cacheRepo, cfg.Analytics.CacheTTL, cfg.Analytics.Enabled, logr)
	feeSvc := service.NewFeeService(feeRepo, enrollmentRepo, analyticsSvc, validate, logr)
	exportSvc := service.NewExportService(exportRepo, ledgerSvc, store, signer, logr)
	certificateSvc := service.NewCertificateService(studentRepo, service.CertificateConfig{
		InstitutePrefix: cfg.Certificates.InstitutePrefix,
		SignatoryName:   cfg.Certificates.SignatoryName,
	}, logr)

	exportQueue := jobs.NewQueue("ledger-exports", exportSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportSvc.AttachQueue(exportQueue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exportQueue.Start(ctx)
	defer exportQueue.Stop()

	go func() {
		ticker := time.NewTicker(cfg.Exports.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				exportSvc.Cleanup(ctx, cfg.Exports.SignedURLTTL)
			}
		}
	}()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Dependencies{
		Auth:         authSvc,
		AuthH:        handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc),
		Courses:      handler.NewCourseHandler(courseSvc),
		Students:     handler.NewStudentHandler(studentSvc),
		Enrollments:  handler.NewEnrollmentHandler(enrollmentSvc),
		Fees:         handler.NewFeeHandler(feeSvc, metricsSvc),
		Ledger:       handler.NewLedgerHandler(ledgerSvc),
		Analytics:    handler.NewAnalyticsHandler(analyticsSvc),
		Exports:      handler.NewExportHandler(exportSvc, metricsSvc),
		Certificates: handler.NewCertificateHandler(certificateSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
