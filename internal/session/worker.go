package session

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"b3strat/config"
	"b3strat/internal/selection"
	"b3strat/internal/strategy"
	"b3strat/internal/types"
	"b3strat/pkg/database"
	"b3strat/pkg/mq"
	"b3strat/pkg/telemetry"
	"b3strat/pkg/watchdog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	RequestQueue = "strategy_requests"
	ResultQueue  = "strategy_pools"

	SessionStatusKeyTmpl = "global:session_status:%s" // global:session_status:<session_id> --> processing | canceled
)

// Worker consumes selection requests, runs the selector once per
// session, publishes the chosen pool and records the decision.
type Worker struct {
	rabbitMQ        mq.RabbitMQ
	redisClient     *redis.Client
	db              *gorm.DB
	selector        *selection.Selector
	logger          *zap.Logger
	tracerFactory   *telemetry.TracerFactory
	appConfig       *config.AppConfig
	watchdogFactory *watchdog.WatchDogFactory

	mu        sync.RWMutex
	overrides *strategy.Overrides

	done chan struct{}
}

type WorkerParams struct {
	fx.In

	Lc              fx.Lifecycle
	RabbitMQ        mq.RabbitMQ
	RedisClient     *redis.Client
	DB              *gorm.DB
	Selector        *selection.Selector
	Logger          *zap.Logger
	TracerFactory   *telemetry.TracerFactory
	AppConfig       *config.AppConfig
	WatchdogFactory *watchdog.WatchDogFactory
}

func NewWorker(params WorkerParams) *Worker {
	worker := &Worker{
		rabbitMQ:        params.RabbitMQ,
		redisClient:     params.RedisClient,
		db:              params.DB,
		selector:        params.Selector,
		logger:          params.Logger,
		tracerFactory:   params.TracerFactory,
		appConfig:       params.AppConfig,
		watchdogFactory: params.WatchdogFactory,
		done:            make(chan struct{}),
	}

	workerCtx, cancel := context.WithCancel(context.Background())

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			worker.loadOverrides()
			worker.watchOverrides(workerCtx)
			go worker.start(workerCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			<-worker.done
			return nil
		},
	})
	return worker
}

// starts the consume loop, reconnecting on channel failures
func (w *Worker) start(ctx context.Context) {
	defer close(w.done)
	for {
		err := w.consume(ctx)
		if ctx.Err() != nil {
			w.logger.Info("worker context done, stopping worker")
			return
		}
		if err != nil {
			w.logger.Warn("consume loop ended, retrying", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("worker context done, stopping worker")
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (w *Worker) consume(ctx context.Context) error {
	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return fmt.Errorf("failed to get RabbitMQ channel")
	}
	defer channel.Close()

	q, err := channel.QueueDeclare(
		RequestQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	deliveries, err := channel.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("consuming selection requests", zap.String("queue", q.Name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handleRequest(ctx, delivery.Body)
		}
	}
}

// handleRequest runs selection for one session. It never fails the
// consume loop: a bad request is logged and dropped.
func (w *Worker) handleRequest(ctx context.Context, body []byte) {
	request := types.SelectionRequest{UseGenerator: w.appConfig.SelectionConfig.UseGenerator}
	if err := json.Unmarshal(body, &request); err != nil {
		w.logger.Error("failed to unmarshal selection request", zap.Error(err))
		return
	}
	if request.SessionId == "" {
		request.SessionId = uuid.New().String()
	}

	logger := w.logger.With(
		zap.String("session_id", request.SessionId),
		zap.String("engine", request.Engine),
	)

	statusKey := fmt.Sprintf(SessionStatusKeyTmpl, request.SessionId)
	status, err := w.redisClient.Get(ctx, statusKey).Result()
	if err == nil && status == "canceled" {
		logger.Info("session canceled, skipping selection")
		return
	}

	list, ok := strategy.ListForEngine(request.Engine)
	if !ok {
		logger.Error("no strategy list for engine, skipping selection")
		return
	}
	list = list.WithOverrides(w.currentOverrides())

	method := request.Method
	if method == "" {
		method = w.appConfig.SelectionConfig.Method
	}
	if method == "" {
		method = selection.MethodMultiArmedBandit
	}
	temperature := request.Temperature
	if temperature <= 0 {
		temperature = w.appConfig.SelectionConfig.Temperature
	}
	if temperature <= 0 {
		temperature = selection.MediumTemperature
	}

	tracer := w.tracerFactory.NewTracer(ctx, fmt.Sprintf("b3strat selection %s", request.SessionId))
	tracer.Start()
	defer tracer.End()

	pool := w.selector.GenerateWeightedPool(ctx, list, method, temperature, request.UseGenerator)

	enabled := pool.Enabled()
	logger.Info("strategy pool generated",
		zap.String("method", method),
		zap.Float64("temperature", temperature),
		zap.Strings("strategies", enabled),
	)
	tracer.WithAttributes(
		attribute.String("session_id", request.SessionId),
		attribute.String("engine", request.Engine),
		attribute.String("method", method),
		attribute.StringSlice("strategies", enabled),
	)

	result := types.SelectionResult{
		SessionId:  request.SessionId,
		Engine:     request.Engine,
		Method:     method,
		Strategies: enabled,
	}
	if err := w.rabbitMQ.PublishJSON(ctx, ResultQueue, result); err != nil {
		logger.Error("failed to publish selection result", zap.Error(err))
	}

	decision := database.NewDecision(request.SessionId, request.Engine, method, temperature, enabled)
	if err := database.AddDecision(ctx, w.db, decision); err != nil {
		logger.Error("failed to record decision", zap.Error(err))
	}
}

func (w *Worker) currentOverrides() *strategy.Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.overrides
}

func (w *Worker) loadOverrides() {
	path := w.appConfig.SelectionConfig.OverridesPath
	if path == "" {
		return
	}
	overrides, err := strategy.LoadOverrides(path)
	if err != nil {
		w.logger.Warn("failed to load strategy overrides, keeping previous",
			zap.String("path", path), zap.Error(err))
		return
	}
	w.mu.Lock()
	w.overrides = overrides
	w.mu.Unlock()
	w.logger.Info("strategy overrides loaded", zap.String("path", path))
}

// watchOverrides reloads the overrides file when it changes on disk.
func (w *Worker) watchOverrides(ctx context.Context) {
	path := w.appConfig.SelectionConfig.OverridesPath
	if path == "" {
		return
	}

	notifyChan := make(chan string, 16)
	dog := w.watchdogFactory.New(ctx, notifyChan, func(changed string) bool {
		return filepath.Clean(changed) == filepath.Clean(path)
	})
	dog.AddDir(filepath.Dir(path))

	go func() {
		for range notifyChan {
			w.loadOverrides()
		}
	}()
}
