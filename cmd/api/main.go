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

	_ "github.com/crewcall/crewcall-api/api/swagger"
	"github.com/crewcall/crewcall-api/internal/handler"
	"github.com/crewcall/crewcall-api/internal/middleware"
	"github.com/crewcall/crewcall-api/internal/repository"
	"github.com/crewcall/crewcall-api/internal/service"
	"github.com/crewcall/crewcall-api/pkg/cache"
	"github.com/crewcall/crewcall-api/pkg/config"
	"github.com/crewcall/crewcall-api/pkg/database"
	"github.com/crewcall/crewcall-api/pkg/logger"
	corsmiddleware "github.com/crewcall/crewcall-api/pkg/middleware/cors"
	reqidmiddleware "github.com/crewcall/crewcall-api/pkg/middleware/requestid"
	"github.com/crewcall/crewcall-api/pkg/storage"
)

// @title CrewCall API
// @version 0.1.0
// @description Volunteer coordination service for event staffing
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewExportStore(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if removed, err := store.Sweep(cfg.Exports.SignedURLTTL); err != nil {
					logr.Sugar().Warnw("export sweep failed", "error", err)
				} else if removed > 0 {
					logr.Sugar().Infow("expired exports removed", "count", removed)
				}
			}
		}
	}()

	validate := validator.New()

	eventRepo := repository.NewEventRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	signupRepo := repository.NewSignupRepository(db)

	metricsSvc := service.NewMetricsService()
	feedSvc := service.NewFeedService(cfg.Feed.Capacity, metricsSvc, logr)
	selectionSvc := service.NewSelectionService(service.NewRedisSelectionStore(redisClient), logr)
	cacheSvc := service.NewCacheService(service.NewRedisCacheRepository(redisClient), cfg.Dashboard.CacheTTL, logr)

	eventSvc := service.NewEventService(eventRepo, validate, logr)
	positionSvc := service.NewPositionService(positionRepo, eventRepo, validate, logr)
	signupSvc := service.NewSignupService(signupRepo, positionRepo, redisClient, cfg.Feed.SignupChannel, validate, logr)
	importSvc := service.NewImportService(signupRepo, positionRepo, logr)
	exportSvc := service.NewExportService(signupRepo, eventRepo, store, signer, logr)

	checkinSvc := service.NewCheckInService(positionRepo, signupRepo, metricsSvc, logr, service.CheckInServiceConfig{
		RadiusMeters:  cfg.CheckIn.RadiusMeters,
		LookupRetries: cfg.CheckIn.LookupRetries,
		RetryDelay:    cfg.CheckIn.RetryDelay,
	})
	dashboardSvc := service.NewDashboardService(positionRepo, feedSvc, selectionSvc, cacheSvc, logr)

	monitor := service.NewStaffingMonitor(positionRepo, feedSvc, selectionSvc, cfg.Staffing.Interval, metricsSvc, logr)
	monitor.Start(rootCtx)
	defer monitor.Stop()

	notices, cleanup, err := service.SubscribeSignups(rootCtx, redisClient, cfg.Feed.SignupChannel, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to subscribe to signup channel", "error", err)
	}
	defer cleanup()
	listener := service.NewSignupListener(positionRepo, feedSvc, logr)
	go listener.Run(rootCtx, notices)

	eventHandler := handler.NewEventHandler(eventSvc)
	positionHandler := handler.NewPositionHandler(positionSvc, importSvc)
	signupHandler := handler.NewSignupHandler(signupSvc)
	checkinHandler := handler.NewCheckInHandler(checkinSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)

		api.GET("/positions", positionHandler.List)
		api.GET("/positions/:id", positionHandler.Get)

		api.GET("/signups", signupHandler.List)
		api.POST("/signups", signupHandler.Create)

		api.GET("/checkin/:positionId", checkinHandler.Resolve)
		api.POST("/checkin/:positionId", checkinHandler.Submit)

		api.GET("/exports/download", exportHandler.Download)

		authed := api.Group("", middleware.JWT(cfg.JWT.Secret))
		{
			authed.POST("/events", eventHandler.Create)
			authed.PUT("/events/:id", eventHandler.Update)
			authed.DELETE("/events/:id", eventHandler.Delete)
			authed.POST("/events/:id/roster", exportHandler.Generate)

			authed.POST("/positions", positionHandler.Create)
			authed.PUT("/positions/:id", positionHandler.Update)
			authed.DELETE("/positions/:id", positionHandler.Delete)
			authed.POST("/positions/:id/roster/import", positionHandler.ImportRoster)

			authed.DELETE("/signups/:id", signupHandler.Delete)

			authed.GET("/dashboard/positions", dashboardHandler.Positions)
			authed.GET("/dashboard/issues", dashboardHandler.Issues)
			authed.GET("/dashboard/selection", dashboardHandler.GetSelection)
			authed.PUT("/dashboard/selection", dashboardHandler.SetSelection)
		}
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

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
