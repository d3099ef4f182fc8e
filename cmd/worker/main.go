package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/adapters/event"
	"github.com/khoahotran/resume-builder/adapters/media_storage"
	"github.com/khoahotran/resume-builder/adapters/persistence"
	profileUC "github.com/khoahotran/resume-builder/internal/application/usecase/profile"
	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/logger"
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
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatalf("FATAL: KAFKA_BROKERS is required for the worker")
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting Resume Builder Worker...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	profileRepo, closeStore := openProfileStore(cfg, appLogger)
	defer closeStore()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	_, transformer, err := media_storage.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize media storage", err)
	}

	cache := persistence.NewRedisProfileCache(redisClient, cfg.Redis.CacheTTL, appLogger)
	processImageUC := profileUC.NewProcessImageUseCase(profileUC.ManagerDeps{
		Profiles: profileRepo,
		Cache:    cache,
		Logger:   appLogger,
	}, transformer)

	// Kafka Consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.ProfileTopic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", cfg.Kafka.ProfileTopic), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			time.Sleep(time.Second)
			continue
		}

		ev, err := event.DecodeEvent(msg)
		if err != nil {
			appLogger.Warn("Skipping malformed event", zap.Error(err), zap.Int64("offset", msg.Offset))
			commitMessage(consumer, msg, appLogger)
			continue
		}

		l := appLogger.With(zap.String("user_id", ev.UserID.String()), zap.String("event_type", string(ev.EventType)))
		l.Debug("Processing event", zap.Int64("version", ev.Version))

		err = processWithRetry(ctx, maxEventAttempts, retryBaseDelay, func(ctx context.Context) error {
			return processImageUC.Execute(ctx, ev)
		})
		if errors.Is(err, context.Canceled) {
			// Left uncommitted so the next session picks it up again.
			appLogger.Info("Worker stopped")
			return
		}
		if err != nil {
			l.Error("Giving up on event", err, zap.Int("attempts", maxEventAttempts), zap.Int64("offset", msg.Offset))
		}

		commitMessage(consumer, msg, appLogger)
	}
}

const (
	maxEventAttempts = 5
	retryBaseDelay   = 500 * time.Millisecond
)

// processWithRetry runs process until it succeeds, attempts run out or ctx
// ends, doubling the pause after each failure. The reader does not redeliver
// an uncommitted message within a session, so retries have to happen here.
func processWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, process func(context.Context) error) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = process(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func openProfileStore(cfg config.Config, log logger.Logger) (profile.Repository, func()) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		client, err := persistence.NewMongoClient(cfg, log)
		if err != nil {
			log.Fatal("cannot connect MongoDB", err)
		}
		return persistence.NewMongoProfileRepo(client.Database(cfg.Mongo.Database), log), func() {
			_ = client.Disconnect(context.Background())
		}
	case config.StoreDriverPostgres:
		dbPool, err := persistence.NewPostgresPool(cfg, log)
		if err != nil {
			log.Fatal("cannot connect Postgres", err)
		}
		return persistence.NewPostgresProfileRepo(dbPool, log), dbPool.Close
	default:
		log.Fatal("the worker needs a shared store", errors.New("unsupported store driver "+cfg.Store.Driver))
		return nil, func() {}
	}
}
