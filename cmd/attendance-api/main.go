package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/zeroslashagency/epsilon-attendance-api/api/swagger"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/engine"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/handler"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/middleware"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/repository"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/service"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/cache"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/config"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/database"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/jobs"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/logger"
	corsmiddleware "github.com/zeroslashagency/epsilon-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/zeroslashagency/epsilon-attendance-api/pkg/middleware/requestid"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/storage"
)

// @title Epsilon Attendance API
// @version 0.1.0
// @description Punch-log reconstruction and attendance dashboard backend
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	// Repositories.
	punchRepo := repository.NewPunchLogRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Core services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)

	eng := engine.New(engine.Config{
		DefaultGraceMinutes: cfg.Engine.GraceMinutes,
		ConflictPolicy:      engine.ConflictPolicy(cfg.Engine.ConflictPolicy),
	})

	scheduleSvc, err := service.NewScheduleService(scheduleRepo, cfg.Engine.DefaultShiftStart, cfg.Engine.DefaultShiftEnd, cfg.Engine.GraceMinutes, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid default shift window", "error", err)
	}

	attendanceSvc := service.NewAttendanceService(punchRepo, attendanceRepo, scheduleSvc, eng, cacheSvc, metricsSvc, logr, cfg.Dashboard.CacheTTL)
	dashboardSvc := service.NewDashboardService(attendanceRepo, employeeRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)

	authSvc := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	// Report pipeline.
	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		exportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(attendanceSvc, attendanceRepo, exportStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)

		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("report-export", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(ctx)

		reportSvc = service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	// Realtime rebuild subscription.
	var realtimeSvc *service.RealtimeService
	if cfg.Realtime.Enabled {
		rebuild := func(ctx context.Context, employeeCode string, date time.Time) error {
			_, err := attendanceSvc.RebuildDay(ctx, employeeCode, date)
			return err
		}
		realtimeSvc = service.NewRealtimeService(redisClient, cfg.Realtime.Channel, rebuild, jobs.QueueConfig{
			Workers: 2,
			Logger:  logr,
		}, logr)
		realtimeSvc.Start(ctx)
	}

	// Ingested days rebuild via the shared channel when realtime is on,
	// synchronously otherwise.
	var punchNotifier service.PunchChangeNotifier
	if realtimeSvc != nil {
		punchNotifier = realtimeSvc
	} else {
		punchNotifier = service.PunchChangeNotifierFunc(func(ctx context.Context, event service.PunchChangeEvent) error {
			date, err := time.Parse("2006-01-02", event.Date)
			if err != nil {
				return err
			}
			_, err = attendanceSvc.RebuildDay(ctx, event.EmployeeCode, date)
			return err
		})
	}
	punchLogSvc := service.NewPunchLogService(punchRepo, punchNotifier, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	punchLogHandler := handler.NewPunchLogHandler(punchLogSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/punch-logs", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), punchLogHandler.List)
		protected.POST("/punch-logs", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), punchLogHandler.Ingest)

		attendance := protected.Group("/attendance/:employeeCode")
		attendance.Use(middleware.RBAC(string(models.RoleAdmin), string(models.RoleManager), "SELF"))
		{
			attendance.GET("", attendanceHandler.GetRange)
			attendance.GET("/day", attendanceHandler.GetDay)
			attendance.GET("/stats", attendanceHandler.Stats)
			attendance.POST("/rebuild", attendanceHandler.Rebuild)
		}

		if cfg.Dashboard.Enabled {
			protected.GET("/dashboard/overview", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), dashboardHandler.Overview)
		}

		protected.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)
	}

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		api.GET("/reports/download/:token", reportHandler.Download)
		reports := protected.Group("/reports")
		{
			reports.POST("/generate", reportHandler.Generate)
			reports.GET("/:id", reportHandler.Status)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("forced shutdown", "error", err)
	}
	if realtimeSvc != nil {
		realtimeSvc.Stop()
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
