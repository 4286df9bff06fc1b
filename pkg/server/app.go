package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeGate/internal/domain/repository"
	"TradeGate/internal/scheduler"
	"TradeGate/internal/service/feed"
	"TradeGate/internal/usecase"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	pkgkafka "TradeGate/pkg/kafka"
	applogger "TradeGate/pkg/logger"
)

// App encapsulates the application lifecycle: evaluation loop, Kafka
// consumer, tick stream, scheduler, and the HTTP control surface.
type App struct {
	cfg    *config.Config
	log    *applogger.Logger
	engine *usecase.Engine
	stream *feed.TickStream
	sched  *scheduler.Scheduler

	consumer *pkgkafka.Consumer
	handlers []pkgkafka.MessageHandler
	pub      repository.EventPublisher

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates the App with all dependencies. stream and consumer may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.Engine,
	stream *feed.TickStream,
	sched *scheduler.Scheduler,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	pub repository.EventPublisher,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		engine:   engine,
		stream:   stream,
		sched:    sched,
		consumer: consumer,
		handlers: handlers,
		pub:      pub,
	}
}

// SetHTTPHandler injects the HTTP control handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts every component and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.stream != nil {
		a.stream.Start(ctx)
	}

	a.engine.Start(ctx)
	a.log.Info("evaluation loop started",
		applogger.Int("instruments", len(a.cfg.Session.Instruments)))

	if a.consumer != nil {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.Int("topics", len(a.handlers)))
	}

	if err := a.sched.ScheduleSession(a.cfg.Session.Open, a.cfg.Session.Close, a.engine); err != nil {
		return err
	}
	a.sched.Start()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout.Std(), a.cfg.Server.WriteTimeout.Std(), a.cfg.Server.ShutdownTimeout.Std()),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops components in dependency order: inputs first, then the
// loop, then outputs.
func (a *App) shutdown(ctx context.Context) error {
	a.sched.Stop()

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.engine.Stop()

	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
