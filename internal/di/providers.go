package di

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"TradeGate/internal/domain/repository"
	"TradeGate/internal/handler/api"
	internalrepo "TradeGate/internal/repository"
	"TradeGate/internal/scheduler"
	"TradeGate/internal/service/advisory"
	"TradeGate/internal/service/feed"
	"TradeGate/internal/usecase"
	"TradeGate/pkg/config"
	pkgkafka "TradeGate/pkg/kafka"
	applogger "TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLocation resolves the exchange timezone.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	if cfg.Session.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Session.Timezone, err)
	}
	return loc, nil
}

// ProvideKafkaProducer creates the shared Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger.Std()),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout.Std(), cfg.Kafka.Producer.ReadTimeout.Std()),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the Kafka consumer from YAML config.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin.Std(), cfg.Kafka.Consumer.BackoffMax.Std()),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideEventPublisher creates the Kafka event publisher.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	return internalrepo.NewKafkaPublisher(producer, internalrepo.PublisherTopics{
		Decisions: cfg.Kafka.Topics.Decisions,
		Regime:    cfg.Kafka.Topics.Regime,
	})
}

// ProvideSnapshotStore creates the Redis snapshot store, or nil when Redis is
// disabled; the engine treats a nil store as no-op persistence.
func ProvideSnapshotStore(cfg *config.Config) repository.SnapshotStore {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return internalrepo.NewRedisSnapshotStore(client, cfg.Redis.Key, cfg.Redis.TTL.Std())
}

// ProvideRESTClient creates the candle history client.
func ProvideRESTClient(cfg *config.Config, log *applogger.Logger) *feed.RESTClient {
	return feed.NewRESTClient(feed.RESTConfig{
		BaseURL:        cfg.Feed.BaseURL,
		APIKey:         cfg.Feed.APIKey,
		Timeout:        cfg.Feed.Timeout.Std(),
		RateLimitRPS:   cfg.Feed.RateLimitRPS,
		RateLimitBurst: cfg.Feed.RateLimitBurst,
		BreakerTrips:   cfg.Feed.BreakerTrips,
		BreakerCooloff: cfg.Feed.BreakerCooloff.Std(),
	}, log)
}

// ProvideTickStream creates the WebSocket tick stream, or nil when no stream
// URL is configured.
func ProvideTickStream(cfg *config.Config, log *applogger.Logger) *feed.TickStream {
	if cfg.Feed.WebSocketURL == "" {
		return nil
	}
	return feed.NewTickStream(feed.StreamConfig{
		URL:            cfg.Feed.WebSocketURL,
		APIKey:         cfg.Feed.APIKey,
		Instruments:    cfg.InstrumentNames(),
		ReconnectDelay: cfg.Feed.ReconnectDelay.Std(),
		PingInterval:   cfg.Feed.PingInterval.Std(),
	}, log)
}

// ProvideCandleSource composes the REST and stream clients.
func ProvideCandleSource(rest *feed.RESTClient, stream *feed.TickStream) repository.CandleSource {
	return feed.NewSource(rest, stream)
}

// ProvideAdvisor creates the advisory client, or nil when disabled.
func ProvideAdvisor(cfg *config.Config) repository.Advisor {
	if !cfg.Advisory.Enabled || cfg.Advisory.URL == "" {
		return nil
	}
	return advisory.NewClient(cfg.Advisory.URL, cfg.Advisory.Timeout.Std())
}

// ProvideOrchestrator creates the gate evaluation chain.
func ProvideOrchestrator(cfg *config.Config, log *applogger.Logger) *usecase.Orchestrator {
	return usecase.NewOrchestrator(cfg.Engine, log)
}

// ProvideEngine creates the evaluation loop.
func ProvideEngine(
	cfg *config.Config,
	loc *time.Location,
	orch *usecase.Orchestrator,
	source repository.CandleSource,
	pub repository.EventPublisher,
	store repository.SnapshotStore,
	m repository.Metrics,
	advisor repository.Advisor,
	log *applogger.Logger,
) *usecase.Engine {
	return usecase.NewEngine(usecase.SessionConfig{
		Open:           cfg.Session.Open,
		Close:          cfg.Session.Close,
		Location:       loc,
		PollInterval:   cfg.Session.PollInterval.Std(),
		Instruments:    cfg.InstrumentNames(),
		ExpiryWeekdays: cfg.ExpiryWeekdays(),
	}, cfg.Indicators, orch, source, pub, store, m, advisor, log)
}

// ProvideKafkaHandlers registers the signal and outcome consumers.
func ProvideKafkaHandlers(cfg *config.Config, engine *usecase.Engine) []pkgkafka.MessageHandler {
	return []pkgkafka.MessageHandler{
		usecase.NewSignalHandler(cfg.Kafka.Topics.Signals, engine),
		usecase.NewOutcomeHandler(cfg.Kafka.Topics.Outcomes, engine),
	}
}

// ProvideScheduler creates the session boundary scheduler.
func ProvideScheduler(loc *time.Location, log *applogger.Logger) *scheduler.Scheduler {
	return scheduler.New(loc, log)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.Engine,
	stream *feed.TickStream,
	sched *scheduler.Scheduler,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	pub repository.EventPublisher,
) *server.App {
	app := server.New(cfg, log, engine, stream, sched, consumer, handlers, pub)
	app.SetHTTPHandler(api.NewControlHandler(log, engine))
	return app
}
