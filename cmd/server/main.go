package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/adapters/event"
	httpAdapter "github.com/khoahotran/resume-builder/adapters/http"
	"github.com/khoahotran/resume-builder/adapters/llm"
	"github.com/khoahotran/resume-builder/adapters/media_storage"
	"github.com/khoahotran/resume-builder/adapters/persistence"
	"github.com/khoahotran/resume-builder/adapters/ws"
	"github.com/khoahotran/resume-builder/internal/application/service"
	assistUC "github.com/khoahotran/resume-builder/internal/application/usecase/assist"
	authUC "github.com/khoahotran/resume-builder/internal/application/usecase/auth"
	profileUC "github.com/khoahotran/resume-builder/internal/application/usecase/profile"
	userUC "github.com/khoahotran/resume-builder/internal/application/usecase/user"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/internal/domain/user"
	"github.com/khoahotran/resume-builder/pkg/auth"
	"github.com/khoahotran/resume-builder/pkg/logger"
	"github.com/khoahotran/resume-builder/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: invalid config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Resume Builder API Server...", zap.String("store", cfg.Store.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "resume-builder-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	// Repositories
	profileRepo, userRepo, closeStore := openStore(cfg, appLogger)
	defer closeStore()

	// Cache and locks
	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Events
	hub := ws.NewHub(appLogger)
	go hub.Run(ctx)

	publishers := []service.EventPublisher{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publishers = append(publishers, kafkaClient)
	} else {
		appLogger.Warn("KAFKA_BROKERS is empty, profile events stay in process")
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	uploader, _, err := media_storage.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}
	llmSvc, err := llm.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM adapter", err)
	}

	deps := profileUC.ManagerDeps{
		Profiles: profileRepo,
		Users:    userRepo,
		Cache:    persistence.NewRedisProfileCache(redisClient, cfg.Redis.CacheTTL, appLogger),
		Locker:   persistence.NewLocker(redisClient, appLogger),
		Events:   event.NewFanout(publishers...),
		Logger:   appLogger,
	}

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth:    httpAdapter.NewAuthHandler(authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)),
		Profile: httpAdapter.NewProfileHandler(profileUC.NewProfileUseCase(deps), profileUC.NewImageUseCase(deps, uploader, cfg.Storage.MaxImageSize), ws.NewHandler(hub, appLogger), appLogger),
		User:    httpAdapter.NewUserHandler(userUC.NewDetailsUseCase(userRepo, appLogger)),
		Assist:  httpAdapter.NewAssistHandler(assistUC.NewDescribeUseCase(llmSvc, appLogger)),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(handlers, httpAdapter.NewSectionHandlers(deps), jwtSvc, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}

// openStore wires the configured profile store. Users always come from
// Postgres except for the memory driver.
func openStore(cfg config.Config, log logger.Logger) (profile.Repository, user.Repository, func()) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn("Using the in-memory store, data is lost on restart")
		return persistence.NewMemoryProfileRepo(), persistence.NewMemoryUserRepo(), func() {}
	}

	dbPool, err := persistence.NewPostgresPool(cfg, log)
	if err != nil {
		log.Fatal("cannot connect Postgres", err)
	}
	userRepo := persistence.NewPostgresUserRepo(dbPool, log)

	if cfg.Store.Driver == config.StoreDriverMongo {
		profileRepo, closeMongo := openMongoProfiles(cfg, log)
		return profileRepo, userRepo, func() {
			closeMongo()
			dbPool.Close()
		}
	}

	return persistence.NewPostgresProfileRepo(dbPool, log), userRepo, dbPool.Close
}

func openMongoProfiles(cfg config.Config, log logger.Logger) (profile.Repository, func()) {
	client, err := persistence.NewMongoClient(cfg, log)
	if err != nil {
		log.Fatal("cannot connect MongoDB", err)
	}
	db := client.Database(cfg.Mongo.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := persistence.EnsureProfileIndexes(ctx, db); err != nil {
		log.Fatal("cannot create MongoDB indexes", err)
	}

	return persistence.NewMongoProfileRepo(db, log), func() {
		_ = client.Disconnect(context.Background())
	}
}

