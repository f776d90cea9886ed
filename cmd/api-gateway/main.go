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

	"github.com/devstorm/docstorm-api/internal/handler"
	"github.com/devstorm/docstorm-api/internal/middleware"
	"github.com/devstorm/docstorm-api/internal/repository"
	"github.com/devstorm/docstorm-api/internal/service"
	"github.com/devstorm/docstorm-api/pkg/cache"
	"github.com/devstorm/docstorm-api/pkg/config"
	"github.com/devstorm/docstorm-api/pkg/database"
	"github.com/devstorm/docstorm-api/pkg/jobs"
	"github.com/devstorm/docstorm-api/pkg/logger"
	corsmiddleware "github.com/devstorm/docstorm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/devstorm/docstorm-api/pkg/middleware/requestid"
	"github.com/devstorm/docstorm-api/pkg/storage"
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

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	progressionRepo := repository.NewProgressionRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Session.TTL)

	// Services.
	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, logr)
	historySvc := service.NewHistoryService(historyRepo, courseRepo, logr)

	queue := jobs.NewQueue("docstorm", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		Logger:     logr,
	})
	queue.Register(service.JobCourseViewed, func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(service.CourseViewJob)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		if err := historySvc.RecordView(ctx, payload.UserID, payload.CourseID, payload.At); err != nil {
			return err
		}
		metricsSvc.RecordViewJob()
		return nil
	})

	authSvc := service.NewAuthService(userRepo, sessionRepo, validate, logr, service.AuthConfig{
		SessionTTL:  cfg.Session.TTL,
		ResetSecret: cfg.Reset.Secret,
		ResetTTL:    cfg.Reset.TTL,
	})
	courseSvc := service.NewCourseService(courseRepo, reviewRepo, favoriteRepo, userRepo, store, queue, validate, logr, service.CourseConfig{
		MaxFileSizeBytes:  cfg.Uploads.MaxFileSizeBytes,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
	})
	favoriteSvc := service.NewFavoriteService(favoriteRepo, courseRepo, cacheSvc, logr)
	dashboardSvc := service.NewDashboardService(favoriteRepo, cacheSvc, logr, cfg.Dashboard.CacheTTL)
	userSvc := service.NewUserService(userRepo, sessionRepo, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, cacheSvc, logr, cfg.Stats.CacheTTL)
	progressionSvc := service.NewProgressionService(progressionRepo, courseRepo, logr)

	// Handlers.
	cookie := handler.SessionCookie{
		Name:   cfg.Session.CookieName,
		MaxAge: int(cfg.Session.TTL / time.Second),
		Secure: cfg.Session.SecureCookie,
	}
	authHandler := handler.NewAuthHandler(authSvc, cookie, logr)
	courseHandler := handler.NewCourseHandler(courseSvc)
	profileHandler := handler.NewProfileHandler(favoriteSvc, historySvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	userHandler := handler.NewUserHandler(userSvc, cookie)
	progressionHandler := handler.NewProgressionHandler(progressionSvc)
	adminCourseHandler := handler.NewAdminCourseHandler(courseSvc)
	adminUserHandler := handler.NewAdminUserHandler(userSvc)
	adminStatsHandler := handler.NewAdminStatsHandler(statsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static("/static", cfg.Uploads.StorageDir)

	api := r.Group("/api")
	{
		api.POST("/connexion", authHandler.Login)
		api.POST("/inscription", authHandler.Register)
		api.POST("/forgot-password", authHandler.ForgotPassword)
		api.POST("/reset-password", authHandler.ResetPassword)
	}

	authed := api.Group("")
	authed.Use(middleware.Session(authSvc, cfg.Session.CookieName))
	{
		authed.POST("/deconnexion", authHandler.Logout)
		authed.GET("/auth/check", authHandler.Check)

		authed.GET("/cours", courseHandler.Browse)
		authed.GET("/cours/details/:id", courseHandler.Detail)
		authed.POST("/cours/avis/:id", courseHandler.Review)

		authed.GET("/profil/favoris", profileHandler.Favorites)
		authed.POST("/profil/favoris/ajouter/:id", profileHandler.ToggleFavorite)
		authed.GET("/profil/historique", profileHandler.History)
		authed.POST("/profil/historique/clear", profileHandler.ClearHistory)

		authed.GET("/dashboard", dashboardHandler.Dashboard)

		authed.GET("/user/profile", userHandler.Profile)
		authed.PUT("/user/profile", userHandler.UpdateProfile)
		authed.POST("/user/password", userHandler.ChangePassword)
		authed.POST("/user/delete", userHandler.DeleteAccount)

		authed.GET("/progression", progressionHandler.List)
		authed.GET("/progression/:id", progressionHandler.Get)
		authed.POST("/progression/:id", progressionHandler.Set)
	}

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/check", authHandler.AdminCheck)

		admin.GET("/cours", adminCourseHandler.List)
		admin.POST("/cours/ajouter", adminCourseHandler.Create)
		admin.POST("/cours/update/:id", adminCourseHandler.Update)
		admin.DELETE("/cours/delete/:id", adminCourseHandler.Delete)

		admin.GET("/users", adminUserHandler.List)
		admin.PUT("/users/:id/role", adminUserHandler.UpdateRole)
		admin.DELETE("/users/:id", adminUserHandler.Delete)

		admin.GET("/stats", adminStatsHandler.Overview)
		admin.GET("/stats/export", adminStatsHandler.Export)
		admin.GET("/top-courses", adminStatsHandler.TopCourses)
		admin.GET("/courses-activity", adminStatsHandler.CoursesActivity)
		admin.GET("/users-activity", adminStatsHandler.UsersActivity)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
		os.Exit(1)
	}
}
