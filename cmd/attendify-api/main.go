package main

import (
	"context"
	"errors"
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

	_ "github.com/attendify/attendify-api/api/swagger"
	"github.com/attendify/attendify-api/internal/handler"
	"github.com/attendify/attendify-api/internal/middleware"
	"github.com/attendify/attendify-api/internal/repository"
	"github.com/attendify/attendify-api/internal/service"
	"github.com/attendify/attendify-api/pkg/cache"
	"github.com/attendify/attendify-api/pkg/config"
	"github.com/attendify/attendify-api/pkg/database"
	"github.com/attendify/attendify-api/pkg/logger"
	"github.com/attendify/attendify-api/pkg/mailer"
	corsmiddleware "github.com/attendify/attendify-api/pkg/middleware/cors"
	reqidmiddleware "github.com/attendify/attendify-api/pkg/middleware/requestid"
)

// @title Attendify API
// @version 1.0.0
// @description Classroom attendance tracking with automatic absence marking
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	classroomRepo := repository.NewClassroomRepository(db, logr)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr)

	var reportCache *service.CacheService
	if cfg.Reports.CacheEnabled && redisClient != nil {
		reportCache = cacheSvc
	}

	notifier := service.NewNotifierService(mailer.New(cfg.Mail, logr), logr)
	resolver := service.NewScheduleResolver(cfg.Sweep.GraceWindow, logr)
	reconciler := service.NewAbsenceReconciler(studentRepo, attendanceRepo, notifier, time.Now, logr)
	sweepSvc := service.NewSweepService(classroomRepo, resolver, reconciler, cacheSvc, metricsSvc, logr)

	attendanceSvc := service.NewAttendanceService(classroomRepo, studentRepo, attendanceRepo, validate, logr, service.AttendanceServiceConfig{
		Cache:         reportCache,
		ReportTTL:     cfg.Reports.CacheTTL,
		LateThreshold: cfg.CheckIn.LateThreshold,
	})
	classroomSvc := service.NewClassroomService(classroomRepo, studentRepo, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

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
	r.GET("/metrics", handler.NewMetricsHandler(metricsSvc).Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	classroomHandler := handler.NewClassroomHandler(classroomSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	sweepHandler := handler.NewSweepHandler(sweepSvc, time.Now)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/attendance/check-in", attendanceHandler.CheckIn)

	instructor := api.Group("", middleware.JWT(authSvc))
	instructor.GET("/classrooms", classroomHandler.List)
	instructor.GET("/classrooms/:code", classroomHandler.Get)
	instructor.GET("/classrooms/:code/students", classroomHandler.Students)
	instructor.GET("/classrooms/:code/report", attendanceHandler.ClassReport)
	instructor.GET("/classrooms/:code/report/export", attendanceHandler.ExportClassReport)
	instructor.GET("/classrooms/:code/students/:id/history", attendanceHandler.StudentHistory)
	instructor.GET("/attendance", attendanceHandler.List)
	instructor.GET("/sweep/status", sweepHandler.Status)

	r.POST("/internal/sweep", middleware.SweepAuth(cfg.Sweep.Token), sweepHandler.Trigger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sweep.Enabled {
		go sweepSvc.Start(ctx, cfg.Sweep.Interval)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
