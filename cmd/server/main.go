package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/auth"
	"github.com/adityavardhansharma/ai-mock-interview/internal/config"
	"github.com/adityavardhansharma/ai-mock-interview/internal/grading"
	"github.com/adityavardhansharma/ai-mock-interview/internal/handlers"
	"github.com/adityavardhansharma/ai-mock-interview/internal/jobs"
	"github.com/adityavardhansharma/ai-mock-interview/internal/live"
	"github.com/adityavardhansharma/ai-mock-interview/internal/llm"
	_ "github.com/adityavardhansharma/ai-mock-interview/internal/llm/gemini"
	_ "github.com/adityavardhansharma/ai-mock-interview/internal/llm/openai"
	"github.com/adityavardhansharma/ai-mock-interview/internal/metrics"
	"github.com/adityavardhansharma/ai-mock-interview/internal/prompts"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories"
	"github.com/adityavardhansharma/ai-mock-interview/internal/repositories/gormstore"
	mongostore "github.com/adityavardhansharma/ai-mock-interview/internal/repositories/mongo"
	"github.com/adityavardhansharma/ai-mock-interview/internal/routers"
	"github.com/adityavardhansharma/ai-mock-interview/internal/services"
)

func registerRoutes(router *chi.Mux, authMiddleware func(http.Handler) http.Handler, api routers.Handlers, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.APIRoutes(router, authMiddleware, api)
}

// openStore connects the configured persistence backend.
func openStore(ctx context.Context, cfg *config.Config) (*repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongostore.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return mongostore.NewStore(ctx, client)
	case config.StorePostgres:
		db, err := gormstore.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return gormstore.NewStore(db), nil
	case config.StoreSQLite:
		db, err := gormstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return gormstore.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// openBus returns nil when live updates are not configured or Redis is
// unreachable; the service then runs without push.
func openBus(ctx context.Context, cfg *config.Config, logger *zap.Logger) *live.Bus {
	if !cfg.LiveEnabled() {
		logger.Info("REDIS_ADDR not set, live updates disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	bus := live.NewBus(rdb, logger)
	if err := bus.Ping(ctx); err != nil {
		logger.Error("Failed to reach Redis, live updates disabled", zap.Error(err))
		rdb.Close()
		return nil
	}
	return bus
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("store", cfg.StoreDriver),
		zap.Bool("live", cfg.LiveEnabled()))

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.Open(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStore(startupCtx, cfg)
	if err != nil {
		cancelStartup()
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	bus := openBus(startupCtx, cfg, logger)
	cancelStartup()

	// keep typed nils out of the interfaces below
	var publisher live.Publisher
	var subscriber handlers.Subscriber
	var busPinger repositories.Pinger
	if bus != nil {
		publisher, subscriber, busPinger = bus, bus, bus
	}

	generator := grading.NewQuestionGenerator(aiProvider, promptManager, cfg.QuestionCount, logger)
	if _, ok := promptManager.GetTemplates()[prompts.ModeGrade][cfg.GradeVariant]; !ok {
		logger.Fatal("Unknown grade prompt variant", zap.String("variant", cfg.GradeVariant))
	}
	grader := grading.NewGrader(aiProvider, promptManager, logger).WithVariant(cfg.GradeVariant)

	interviewService := services.NewInterviewService(store.Interviews, store.Answers, generator, publisher, logger)
	answerService := services.NewAnswerService(interviewService, store.Answers, grader, publisher, logger)

	upgrader := handlers.NewUpgrader(cfg.AllowedOrigins)
	feedbackHandler := handlers.NewFeedbackHandler(interviewService, answerService, logger)
	api := routers.Handlers{
		Interviews: handlers.NewInterviewHandler(interviewService, logger),
		Answers:    handlers.NewAnswerHandler(answerService, logger),
		Feedback:   feedbackHandler,
		Capture:    handlers.NewCaptureHandler(interviewService, answerService, upgrader, logger),
		Live:       handlers.NewLiveHandler(feedbackHandler, subscriber, upgrader, logger),
	}
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg, store.Pinger, busPinger)

	exporterJob := jobs.NewAnswerExporterJob(store.Answers, promptManager, cfg.Export, logger)
	if err := exporterJob.Start(); err != nil {
		logger.Error("Failed to start answer exporter job", zap.Error(err))
	}

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, metrics.Middleware())

	registerRoutes(router, auth.Middleware(cfg.JWTSecret, logger), api, healthHandler)

	serverAddr := ":" + cfg.Port

	// no WriteTimeout: capture and live sockets outlive any fixed deadline
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Mock interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Mock interview service shutting down...")

	exporterJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := store.Close(ctx); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
	if bus != nil {
		if err := bus.Close(); err != nil {
			logger.Warn("Failed to close live bus", zap.Error(err))
		}
	}

	logger.Info("Mock interview service exited")
}
