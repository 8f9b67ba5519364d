package distribution

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const DistributionKeyTmpl = "b3strat:distribution:%s" // b3strat:distribution:<engine> --> json array of records

// Loader loads the historical combination distribution for an engine.
type Loader interface {
	// Load never fails: on missing or bad data it returns an empty
	// Distribution, so selection can fall back to the default path.
	Load(ctx context.Context, engine string) Distribution
}

type Store struct {
	redisClient *redis.Client
	logger      *zap.Logger
}

type StoreParams struct {
	fx.In

	RedisClient *redis.Client
	Logger      *zap.Logger
}

func NewStore(p StoreParams) Loader {
	return &Store{
		redisClient: p.RedisClient,
		logger:      p.Logger,
	}
}

func (s *Store) Load(ctx context.Context, engine string) Distribution {
	key := fmt.Sprintf(DistributionKeyTmpl, engine)

	raw, err := s.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		s.logger.Debug("no strategy distribution for engine", zap.String("engine", engine))
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to load strategy distribution, falling back to empty",
			zap.String("engine", engine), zap.Error(err))
		return nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.Warn("failed to unmarshal strategy distribution, falling back to empty",
			zap.String("engine", engine), zap.Error(err))
		return nil
	}

	distribution := make(Distribution, 0, len(records))
	for _, record := range records {
		if record.Weight < 0 {
			s.logger.Warn("dropping distribution record with negative weight",
				zap.String("engine", engine), zap.String("combo", record.Combo))
			continue
		}
		if record.Engine != "" && record.Engine != engine {
			s.logger.Warn("dropping distribution record for wrong engine",
				zap.String("engine", engine), zap.String("record_engine", record.Engine))
			continue
		}
		distribution = append(distribution, record)
	}
	return distribution
}
