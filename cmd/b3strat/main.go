package main

import (
	"b3strat/config"
	"b3strat/internal/distribution"
	"b3strat/internal/selection"
	"b3strat/internal/session"
	"b3strat/pkg/database"
	"b3strat/pkg/logger"
	"b3strat/pkg/mq"
	"b3strat/pkg/telemetry"
	"b3strat/pkg/watchdog"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,           // inject config
			database.NewDBConnection,    // inject db connection
			database.NewRedisClient,     // inject redis client
			logger.NewLogger,            // inject logger
			mq.NewRabbitMQ,              // inject rabbitmq service
			telemetry.NewTelemetry,      // inject telemetry
			telemetry.NewTracerFactory,  // inject telemetry tracer factory
			distribution.NewStore,       // inject distribution store
			selection.NewSelector,       // inject strategy selector
			watchdog.NewWatchDogFactory, // inject watchdog factory
		),
		fx.Invoke(
			session.NewWorker,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			zlogger := fxevent.ZapLogger{Logger: log}
			zlogger.UseLogLevel(zap.DebugLevel)
			return &zlogger
		}),
	)
	app.Run()
}
