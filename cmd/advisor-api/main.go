package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uninav/advisor-api/api/swagger"
	"github.com/uninav/advisor-api/internal/handler"
	"github.com/uninav/advisor-api/internal/middleware"
	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/planner"
	"github.com/uninav/advisor-api/internal/repository"
	"github.com/uninav/advisor-api/internal/service"
	"github.com/uninav/advisor-api/internal/transcript"
	"github.com/uninav/advisor-api/pkg/cache"
	"github.com/uninav/advisor-api/pkg/config"
	"github.com/uninav/advisor-api/pkg/database"
	"github.com/uninav/advisor-api/pkg/export"
	"github.com/uninav/advisor-api/pkg/jobs"
	"github.com/uninav/advisor-api/pkg/logger"
	pkgmiddleware "github.com/uninav/advisor-api/pkg/middleware"
	"github.com/uninav/advisor-api/pkg/storage"
)

// @title UniNav Advisor API
// @version 1.0.0
// @description Academic record extraction and degree planning service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	rules, err := loadRuleset(cfg, logr)
	if err != nil {
		logr.Fatal("failed to load ruleset", zap.Error(err))
	}

	graph, err := loadGraph(cfg, logr)
	if err != nil {
		logr.Fatal("failed to load prerequisite catalog", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	exportRepo := repository.NewExportRepository(db)

	metricsSvc := service.NewMetricsService()

	var digestCache, planCache *service.CacheService
	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		digestCache = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DigestTTL, logr, true)
		planCache = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.PlanTTL, logr, true)
	} else {
		digestCache = service.NewCacheService(nil, metricsSvc, cfg.Cache.DigestTTL, logr, false)
		planCache = service.NewCacheService(nil, metricsSvc, cfg.Cache.PlanTTL, logr, false)
	}

	parser := transcript.NewParser(rules, logr)
	plannerEngine := planner.NewPlanner(graph, rules, planner.Config{
		MaxCreditsPerSemester: cfg.Advisor.MaxCreditsPerSemester,
		CreditVelocity:        cfg.Advisor.CreditVelocity,
	}, logr)

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "advisor-api",
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, auditRepo, validate, logr)
	transcriptSvc := service.NewTranscriptService(parser, recordRepo, auditRepo, digestCache, metricsSvc, logr)
	planSvc := service.NewPlanService(plannerEngine, recordRepo, planCache, metricsSvc, logr)

	var (
		exportSvc   *service.ExportService
		exportQueue *jobs.Queue
	)
	if cfg.Exports.Enabled {
		store, storeErr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if storeErr != nil {
			logr.Fatal("failed to init export storage", zap.Error(storeErr))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		generator := service.NewExportGenerator(recordRepo, plannerEngine, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		worker := service.NewExportWorker(exportRepo, generator, metricsSvc, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportSvc = service.NewExportService(exportRepo, exportQueue, generator, auditRepo, logr, service.ExportServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})

		exportQueue.Start(ctx)
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Advisor.MaxUploadBytes
	r.Use(gin.Recovery())
	r.Use(pkgmiddleware.RequestID())
	r.Use(logger.GinMiddleware(logr))
	r.Use(pkgmiddleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, cacheRepo)
	r.GET("/healthz", metricsHandler.Liveness)
	r.GET("/readyz", metricsHandler.Readiness)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	transcriptHandler := handler.NewTranscriptHandler(transcriptSvc)
	planHandler := handler.NewPlanHandler(planSvc)

	limitUpload := func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.Advisor.MaxUploadBytes)
		c.Next()
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	authed.POST("/transcripts", limitUpload, transcriptHandler.Ingest)
	authed.GET("/records/:id", transcriptHandler.Record)
	authed.GET("/students/:studentKey/record", transcriptHandler.LatestRecord)
	authed.GET("/students/:studentKey/versions", transcriptHandler.Versions)
	authed.GET("/students/:studentKey/digest", transcriptHandler.Digest)
	authed.GET("/students/:studentKey/diff", transcriptHandler.Diff)
	authed.POST("/students/:studentKey/plan", planHandler.Generate)
	authed.GET("/students/:studentKey/graduation", planHandler.Graduation)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		authed.POST("/exports", exportHandler.Create)
		authed.GET("/exports/:id", exportHandler.Status)
		api.GET("/exports/:id/download", exportHandler.Download)
	}

	admin := authed.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/users", userHandler.Create)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.DELETE("/users/:id", userHandler.Deactivate)
	admin.GET("/admin/metrics", metricsHandler.Snapshot)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown incomplete", zap.Error(err))
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
	logr.Info("stopped")
}

func loadRuleset(cfg *config.Config, logr *zap.Logger) (*transcript.Ruleset, error) {
	var rules *transcript.Ruleset
	if cfg.Advisor.RulesetPath != "" {
		loaded, err := transcript.LoadRuleset(cfg.Advisor.RulesetPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
		logr.Info("ruleset loaded", zap.String("path", cfg.Advisor.RulesetPath))
	} else {
		rules = transcript.DefaultRuleset()
	}
	if cfg.Advisor.DefaultCreditsRequired > 0 {
		rules.CreditsRequired = cfg.Advisor.DefaultCreditsRequired
	}
	if cfg.Advisor.CreditTolerance > 0 {
		rules.CreditTolerance = cfg.Advisor.CreditTolerance
	}
	if cfg.Advisor.DefaultCourseCredits > 0 {
		rules.DefaultCourseCredits = cfg.Advisor.DefaultCourseCredits
	}
	return rules, nil
}

func loadGraph(cfg *config.Config, logr *zap.Logger) (*planner.PrerequisiteGraph, error) {
	if cfg.Advisor.GraphPath == "" {
		logr.Warn("prerequisite catalog not configured, plans will only use uploaded records")
		return planner.NewGraph(nil), nil
	}
	graph, err := planner.LoadGraph(cfg.Advisor.GraphPath)
	if err != nil {
		return nil, err
	}
	logr.Info("prerequisite catalog loaded", zap.String("path", cfg.Advisor.GraphPath), zap.Int("courses", graph.Len()))
	return graph, nil
}
