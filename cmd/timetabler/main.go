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

	"github.com/noah-isme/campus-timetabler/internal/handler"
	internalmiddleware "github.com/noah-isme/campus-timetabler/internal/middleware"
	"github.com/noah-isme/campus-timetabler/internal/repository"
	"github.com/noah-isme/campus-timetabler/internal/service"
	"github.com/noah-isme/campus-timetabler/pkg/cache"
	"github.com/noah-isme/campus-timetabler/pkg/config"
	"github.com/noah-isme/campus-timetabler/pkg/database"
	"github.com/noah-isme/campus-timetabler/pkg/jobs"
	"github.com/noah-isme/campus-timetabler/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-timetabler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-timetabler/pkg/middleware/requestid"
	"github.com/noah-isme/campus-timetabler/pkg/storage"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.Admin)

	catalogRepo := repository.NewCatalogRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	timetableSvc := service.NewTimetableService(catalogRepo, scheduleRepo, redisClient, metricsSvc, logr, cfg.Scheduler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewDownloadTokenSigner(cfg.Admin.JWTSecret, 24*time.Hour)
		exportSvc = service.NewExportService(timetableSvc, files, signer, metricsSvc, logr, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		})
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/token", authHandler.Token)

	timetables := api.Group("/timetables")
	timetables.GET("", timetableHandler.Latest)
	timetables.GET("/runs/:id/grids", timetableHandler.Grids)
	timetables.GET("/runs/:id/summary", timetableHandler.Summary)
	timetables.GET("/runs/:id/violations", timetableHandler.Violations)

	admin := timetables.Group("", internalmiddleware.Admin(authSvc))
	admin.POST("/generate", timetableHandler.Generate)
	admin.POST("/runs/:id/negotiate", timetableHandler.Negotiate)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		exports := api.Group("/exports")
		exports.POST("", internalmiddleware.Admin(authSvc), exportHandler.Create)
		exports.GET("/download", exportHandler.Download)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
