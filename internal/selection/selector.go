package selection

import (
	"context"
	"math"

	"b3strat/internal/distribution"
	"b3strat/internal/strategy"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	MethodDefault          = "default"
	MethodMultiArmedBandit = "multi_armed_bandit"

	// MediumTemperature mildly favors the highest-weight combinations
	// while keeping nonzero mass on every recorded one.
	MediumTemperature = 0.5
)

// Selector builds strategy pools. The default path uses only the
// catalog and the random source; the bandit path additionally samples
// one historical combination from the distribution store.
//
// Selector never fails: any missing or inconsistent input degrades to
// the default path, so a fuzzing session can always start.
type Selector struct {
	store  distribution.Loader
	rng    Rand
	logger *zap.Logger
}

type SelectorParams struct {
	fx.In

	Store  distribution.Loader
	Logger *zap.Logger
}

func NewSelector(p SelectorParams) *Selector {
	return New(p.Store, NewRand(), p.Logger)
}

func New(store distribution.Loader, rng Rand, logger *zap.Logger) *Selector {
	return &Selector{
		store:  store,
		rng:    rng,
		logger: logger,
	}
}

// GenerateDefaultPool draws every strategy by its base probability.
// Within an exclusion group members are drawn in list order and the
// first success wins; the rest of the group is excluded without a draw,
// so mutually exclusive options never stack their probabilities.
func (s *Selector) GenerateDefaultPool(list strategy.List, generatorEnabled bool) *StrategyPool {
	enabled := make(map[string]struct{})
	groupDecided := make(map[string]bool)

	for _, st := range list.Strategies {
		if st.RequiresGenerator && !generatorEnabled {
			continue
		}
		if st.ExclusionGroup != "" && groupDecided[st.ExclusionGroup] {
			continue
		}
		if !DecideWithProbability(s.rng, st.BaseProbability) {
			continue
		}
		enabled[st.Name] = struct{}{}
		if st.ExclusionGroup != "" {
			groupDecided[st.ExclusionGroup] = true
		}
	}

	return newStrategyPool(list.Engine, enabled)
}

// GenerateWeightedPool builds a pool from the engine's historical
// combination distribution using multi-armed-bandit sampling. With
// method "default" (or anything unrecognized) the distribution is not
// consulted at all and the default generator decides alone.
func (s *Selector) GenerateWeightedPool(ctx context.Context, list strategy.List, method string, temperature float64, generatorEnabled bool) *StrategyPool {
	switch method {
	case MethodMultiArmedBandit:
	case MethodDefault:
		return s.GenerateDefaultPool(list, generatorEnabled)
	default:
		s.logger.Warn("unrecognized selection method, using default",
			zap.String("method", method), zap.String("engine", list.Engine))
		return s.GenerateDefaultPool(list, generatorEnabled)
	}

	if temperature <= 0 {
		s.logger.Warn("non-positive selection temperature, using medium",
			zap.Float64("temperature", temperature))
		temperature = MediumTemperature
	}

	dist := s.store.Load(ctx, list.Engine)
	if len(dist) == 0 {
		// no history for this engine yet
		return s.GenerateDefaultPool(list, generatorEnabled)
	}

	winner, ok := s.sampleCombination(dist, temperature)
	if !ok {
		return s.GenerateDefaultPool(list, generatorEnabled)
	}

	combo := make(map[string]struct{})
	for _, name := range winner.Strategies() {
		if _, known := list.Lookup(name); !known {
			s.logger.Warn("unknown strategy name in distribution record, ignoring",
				zap.String("engine", list.Engine), zap.String("strategy", name))
			continue
		}
		combo[name] = struct{}{}
	}

	// The winning combination is atomic: strategies outside it are
	// excluded without consulting their base probability. Only booster
	// strategies still get their own draw afterwards.
	enabled := make(map[string]struct{})
	groupDecided := make(map[string]bool)

	for _, st := range list.Strategies {
		if _, inCombo := combo[st.Name]; !inCombo {
			continue
		}
		if st.RequiresGenerator && !generatorEnabled {
			continue
		}
		if st.ExclusionGroup != "" && groupDecided[st.ExclusionGroup] {
			continue
		}
		enabled[st.Name] = struct{}{}
		if st.ExclusionGroup != "" {
			groupDecided[st.ExclusionGroup] = true
		}
	}

	for _, st := range list.Strategies {
		if !st.Booster {
			continue
		}
		if _, already := enabled[st.Name]; already {
			continue
		}
		if st.RequiresGenerator && !generatorEnabled {
			continue
		}
		if st.ExclusionGroup != "" && groupDecided[st.ExclusionGroup] {
			continue
		}
		if !DecideWithProbability(s.rng, st.BaseProbability) {
			continue
		}
		enabled[st.Name] = struct{}{}
		if st.ExclusionGroup != "" {
			groupDecided[st.ExclusionGroup] = true
		}
	}

	return newStrategyPool(list.Engine, enabled)
}

// sampleCombination draws one record, weighted by weight^(1/temperature).
// Temperature 1 is neutral; below 1 sharpens toward the highest-weight
// combination, above 1 flattens toward uniform.
func (s *Selector) sampleCombination(dist distribution.Distribution, temperature float64) (distribution.Record, bool) {
	transformed := make([]float64, len(dist))
	total := 0.0
	for i, record := range dist {
		transformed[i] = math.Pow(record.Weight, 1/temperature)
		total += transformed[i]
	}
	if total <= 0 {
		// all recorded weights are zero
		return distribution.Record{}, false
	}

	r := s.rng.Float64() * total
	cumulative := 0.0
	for i, record := range dist {
		cumulative += transformed[i]
		if r < cumulative {
			return record, true
		}
	}
	// floating point accumulation can leave r just past the last range
	return dist[len(dist)-1], true
}
