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

	_ "github.com/agape-academy/academy-api/api/swagger"
	"github.com/agape-academy/academy-api/internal/handler"
	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/middleware"
	"github.com/agape-academy/academy-api/internal/repository"
	"github.com/agape-academy/academy-api/internal/service"
	"github.com/agape-academy/academy-api/pkg/cache"
	"github.com/agape-academy/academy-api/pkg/config"
	"github.com/agape-academy/academy-api/pkg/database"
	"github.com/agape-academy/academy-api/pkg/jobs"
	"github.com/agape-academy/academy-api/pkg/logger"
	"github.com/agape-academy/academy-api/pkg/mailer"
	"github.com/agape-academy/academy-api/pkg/response"
	"github.com/agape-academy/academy-api/pkg/storage"
)

// @title Agape Academy API
// @version 1.0.0
// @description REST gateway for the Agape Academy platform
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const counterFlushInterval = 30 * time.Second

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
	response.IncludeErrorDetail(cfg.Env != config.EnvProduction)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}

	metrics := service.NewMetricsService()

	backend := hygraph.NewClient(cfg.Hygraph, logr)
	backend.SetObserver(metrics)

	// Repositories.
	userRepo := repository.NewUserRepository(backend)
	blogRepo := repository.NewBlogRepository(backend)
	courseRepo := repository.NewCourseRepository(backend)
	eventRepo := repository.NewEventRepository(backend)
	forumRepo := repository.NewForumRepository(backend)
	ticketRepo := repository.NewTicketRepository(backend)
	assignmentRepo := repository.NewAssignmentRepository(backend)
	auditRepo := repository.NewAuditRepository(db)
	counterRepo := repository.NewCounterRepository(redisClient)
	identityCache := repository.NewIdentityCache(redisClient, logr, 0)

	// Services.
	validate := service.NewValidator()

	devSecret := cfg.DevAuth.TokenSecret
	if devSecret == "" {
		devSecret = cfg.Clerk.SecretKey
	}
	auth, err := service.NewAuthService(userRepo, identityCache, logr, service.AuthConfig{
		PEMPublicKey:   cfg.Clerk.PEMPublicKey,
		SecretKey:      devSecret,
		DevTokenExpiry: cfg.DevAuth.TokenExpiry,
	})
	if err != nil {
		logr.Sugar().Fatalw("failed to init auth service", "error", err)
	}

	sink := &service.CounterSinkMux{}
	sink.Register(service.CounterResourceBlog, blogRepo)
	sink.Register(service.CounterResourceThread, service.CounterWriterFunc(forumRepo.SetThreadCounters))
	counters := service.NewCounterService(counterRepo, sink, logr, metrics)

	audit := service.NewAuditService(auditRepo, logr, metrics)
	blogs := service.NewBlogService(blogRepo, counters, validate, logr)
	courses := service.NewCourseService(courseRepo, validate, logr)
	events := service.NewEventService(eventRepo, validate, logr)
	forum := service.NewForumService(forumRepo, counters, validate, logr)
	tickets := service.NewTicketService(ticketRepo, validate, logr)
	users := service.NewUserService(userRepo, identityCache, validate, logr)
	assignments := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logr)
	exports := service.NewExportService(userRepo, courseRepo, ticketRepo,
		store, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		}, logr)
	contact := service.NewContactService(mailer.New(cfg.SMTP), cfg.SMTP.ContactRecipient,
		jobs.QueueConfig{Logger: logr}, validate, logr)
	seed := service.NewSeedService(userRepo, courseRepo, blogRepo, auth, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exports.Start(ctx)
	defer exports.Stop()
	contact.Start(ctx)
	defer contact.Stop()
	counters.StartFlusher(ctx, counterFlushInterval,
		service.CounterResourceBlog, service.CounterResourceThread)

	deps := routeDeps{
		cfg:       cfg,
		logger:    logr,
		metrics:   metrics,
		auth:      auth,
		limiter:   middleware.NewRateLimiter(redisClient, cfg.RateLimit.PerMinute),
		blog:      handler.NewBlogHandler(blogs, audit),
		course:    handler.NewCourseHandler(courses, audit),
		event:     handler.NewEventHandler(events, audit),
		forum:     handler.NewForumHandler(forum, audit),
		ticket:    handler.NewTicketHandler(tickets, audit),
		user:      handler.NewUserHandler(users, audit),
		assign:    handler.NewAssignmentHandler(assignments, audit),
		authH:     handler.NewAuthHandler(auth),
		contact:   handler.NewContactHandler(contact),
		export:    handler.NewExportHandler(exports),
		auditList: handler.NewAuditHandler(audit),
		seed:      handler.NewSeedHandler(seed),
	}

	r := buildRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
