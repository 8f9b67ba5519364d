package main

// seeds a sample distribution into redis and sends one selection
// request, for local development against a running b3strat

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"b3strat/config"
	"b3strat/internal/distribution"
	"b3strat/internal/strategy"
	"b3strat/internal/types"
	"b3strat/pkg/database"
	"b3strat/pkg/logger"
	"b3strat/pkg/mq"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type seedApp struct {
	rabbitMQ    mq.RabbitMQ
	redisClient *redis.Client
	logger      *zap.Logger
	shutdowner  fx.Shutdowner

	engine string
}

type seedParams struct {
	fx.In
	RabbitMQ    mq.RabbitMQ
	RedisClient *redis.Client
	Logger      *zap.Logger
	Shutdowner  fx.Shutdowner
}

func newSeedApp(engine string) func(p seedParams) *seedApp {
	return func(p seedParams) *seedApp {
		return &seedApp{
			rabbitMQ:    p.RabbitMQ,
			redisClient: p.RedisClient,
			logger:      p.Logger,
			shutdowner:  p.Shutdowner,
			engine:      engine,
		}
	}
}

func (s *seedApp) sendSampleRequest() error {
	records := []distribution.Record{
		{
			Engine: s.engine,
			Combo:  "fork,corpus_subset,recommended_dict,",
			Weight: 0.33,
		},
		{
			Engine: s.engine,
			Combo:  "random_max_len,corpus_mutations_ml_rnn,value_profile,recommended_dict,",
			Weight: 0.34,
		},
		{
			Engine: s.engine,
			Combo:  "corpus_mutations_radamsa,random_max_len,corpus_subset,",
			Weight: 0.33,
		},
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal distribution: %w", err)
	}

	ctx := context.Background()
	key := fmt.Sprintf(distribution.DistributionKeyTmpl, s.engine)
	if err := s.redisClient.Set(ctx, key, encoded, 0).Err(); err != nil {
		return fmt.Errorf("failed to seed distribution: %w", err)
	}

	sessionId := uuid.New().String()
	statusKey := fmt.Sprintf("global:session_status:%s", sessionId)
	s.redisClient.Set(ctx, statusKey, "processing", 0)

	request := types.SelectionRequest{
		SessionId:    sessionId,
		Engine:       s.engine,
		UseGenerator: true,
	}
	if err := s.rabbitMQ.PublishJSON(ctx, "strategy_requests", request); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}

	s.logger.Info("Successfully sent sample selection request",
		zap.String("session_id", sessionId),
		zap.String("engine", s.engine))

	s.shutdowner.Shutdown()

	return nil
}

func main() {
	engine := flag.String("engine", strategy.EngineLibFuzzer, "fuzzing engine to seed a distribution for")
	help := flag.Bool("help", false, "Show help message")
	flag.Parse()

	if *help {
		fmt.Println("Usage: seed [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			mq.NewRabbitMQ,
			database.NewRedisClient,
			newSeedApp(*engine),
		),
		fx.Invoke(func(seed *seedApp) error {
			return seed.sendSampleRequest()
		}),
	)

	app.Run()
}
