package selection

import (
	"context"
	"math/rand"
	"testing"

	"b3strat/internal/distribution"
	"b3strat/internal/strategy"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fixedRand always returns the same draw; 0 makes every probability
// check succeed, anything close to 1 makes every check fail.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

var (
	alwaysRand = fixedRand(0)
	neverRand  = fixedRand(0.9999999)
)

type loaderFunc func(ctx context.Context, engine string) distribution.Distribution

func (f loaderFunc) Load(ctx context.Context, engine string) distribution.Distribution {
	return f(ctx, engine)
}

func emptyLoader() loaderFunc {
	return func(ctx context.Context, engine string) distribution.Distribution { return nil }
}

func staticLoader(dist distribution.Distribution) loaderFunc {
	return func(ctx context.Context, engine string) distribution.Distribution { return dist }
}

func newTestSelector(store distribution.Loader, rng Rand) *Selector {
	return New(store, rng, zap.NewNop())
}

func TestDefaultPoolDeterministicLibFuzzer(t *testing.T) {
	// with every draw succeeding, the first listed member of the corpus
	// mutations group wins and every independent strategy is enabled
	s := newTestSelector(emptyLoader(), alwaysRand)
	pool := s.GenerateDefaultPool(strategy.LibFuzzerStrategies, true)

	assert.True(t, pool.Do(strategy.CorpusMutationRadamsa))
	assert.False(t, pool.Do(strategy.CorpusMutationMLRNN))
	assert.True(t, pool.Do(strategy.CorpusSubset))
	assert.True(t, pool.Do(strategy.RandomMaxLen))
	assert.True(t, pool.Do(strategy.RecommendedDict))
	assert.True(t, pool.Do(strategy.ValueProfile))
	assert.True(t, pool.Do(strategy.Fork))
	assert.True(t, pool.Do(strategy.MutatorPlugin))
}

func TestDefaultPoolDeterministicAFL(t *testing.T) {
	s := newTestSelector(emptyLoader(), alwaysRand)
	pool := s.GenerateDefaultPool(strategy.AFLStrategies, true)

	assert.True(t, pool.Do(strategy.CorpusMutationRadamsa))
	assert.False(t, pool.Do(strategy.CorpusMutationMLRNN))
	assert.True(t, pool.Do(strategy.CorpusSubset))
}

func TestDefaultPoolAllDrawsFail(t *testing.T) {
	s := newTestSelector(emptyLoader(), neverRand)
	pool := s.GenerateDefaultPool(strategy.LibFuzzerStrategies, true)
	assert.Empty(t, pool.Enabled())
}

func TestDefaultPoolRequiresGenerator(t *testing.T) {
	// a requires-generator strategy is skipped outright when the
	// generator is unavailable, even if it is first in its group
	list := strategy.List{
		Engine: "libFuzzer",
		Strategies: []strategy.Strategy{
			{Name: "needs_gen", BaseProbability: 1, ExclusionGroup: "g", RequiresGenerator: true},
			{Name: "fallback", BaseProbability: 1, ExclusionGroup: "g"},
		},
	}

	s := newTestSelector(emptyLoader(), alwaysRand)

	pool := s.GenerateDefaultPool(list, false)
	assert.False(t, pool.Do("needs_gen"))
	assert.True(t, pool.Do("fallback"))

	pool = s.GenerateDefaultPool(list, true)
	assert.True(t, pool.Do("needs_gen"))
	assert.False(t, pool.Do("fallback"))
}

func TestDefaultPoolExclusionInvariant(t *testing.T) {
	// a pool never enables two members of the same exclusion group
	s := newTestSelector(emptyLoader(), rand.New(rand.NewSource(7)))
	for range 10000 {
		pool := s.GenerateDefaultPool(strategy.LibFuzzerStrategies, true)
		if pool.Do(strategy.CorpusMutationRadamsa) && pool.Do(strategy.CorpusMutationMLRNN) {
			t.Fatal("both corpus mutation strategies enabled")
		}
	}
}

func TestWeightedPoolDefaultMethodSkipsDistribution(t *testing.T) {
	store := loaderFunc(func(ctx context.Context, engine string) distribution.Distribution {
		t.Fatal("distribution store consulted on the default path")
		return nil
	})

	seed := int64(11)
	defaultSelector := newTestSelector(emptyLoader(), rand.New(rand.NewSource(seed)))
	weightedSelector := newTestSelector(store, rand.New(rand.NewSource(seed)))

	for range 1000 {
		want := defaultSelector.GenerateDefaultPool(strategy.LibFuzzerStrategies, true)
		got := weightedSelector.GenerateWeightedPool(context.Background(),
			strategy.LibFuzzerStrategies, MethodDefault, MediumTemperature, true)
		assert.Equal(t, want.Enabled(), got.Enabled())
	}
}

func TestWeightedPoolUnknownMethodFallsBack(t *testing.T) {
	seed := int64(23)
	defaultSelector := newTestSelector(emptyLoader(), rand.New(rand.NewSource(seed)))
	weightedSelector := newTestSelector(emptyLoader(), rand.New(rand.NewSource(seed)))

	want := defaultSelector.GenerateDefaultPool(strategy.LibFuzzerStrategies, true)
	got := weightedSelector.GenerateWeightedPool(context.Background(),
		strategy.LibFuzzerStrategies, "epsilon_greedy", MediumTemperature, true)
	assert.Equal(t, want.Enabled(), got.Enabled())
}

func TestWeightedPoolEmptyDistributionFallsBack(t *testing.T) {
	seed := int64(31)
	defaultSelector := newTestSelector(emptyLoader(), rand.New(rand.NewSource(seed)))
	weightedSelector := newTestSelector(emptyLoader(), rand.New(rand.NewSource(seed)))

	for range 1000 {
		want := defaultSelector.GenerateDefaultPool(strategy.AFLStrategies, true)
		got := weightedSelector.GenerateWeightedPool(context.Background(),
			strategy.AFLStrategies, MethodMultiArmedBandit, MediumTemperature, true)
		assert.Equal(t, want.Enabled(), got.Enabled())
	}
}

func TestWeightedPoolZeroWeightsFallBack(t *testing.T) {
	dist := distribution.Distribution{
		{Engine: strategy.EngineAFL, Combo: "corpus_subset,", Weight: 0},
		{Engine: strategy.EngineAFL, Combo: "corpus_mutations_radamsa,", Weight: 0},
	}

	seed := int64(47)
	defaultSelector := newTestSelector(emptyLoader(), rand.New(rand.NewSource(seed)))
	weightedSelector := newTestSelector(staticLoader(dist), rand.New(rand.NewSource(seed)))

	want := defaultSelector.GenerateDefaultPool(strategy.AFLStrategies, true)
	got := weightedSelector.GenerateWeightedPool(context.Background(),
		strategy.AFLStrategies, MethodMultiArmedBandit, MediumTemperature, true)
	assert.Equal(t, want.Enabled(), got.Enabled())
}

func TestWeightedPoolSingleRecordLibFuzzer(t *testing.T) {
	// one record with weight 1 deterministically decides the pool for
	// any temperature; the mutator plugin booster gets its own draw
	dist := distribution.Distribution{{
		Engine: strategy.EngineLibFuzzer,
		Combo:  "random_max_len,corpus_mutations_ml_rnn,value_profile,recommended_dict,",
		Weight: 1,
	}}

	for _, temperature := range []float64{0.25, MediumTemperature, 1, 2, 10} {
		s := newTestSelector(staticLoader(dist), alwaysRand)
		pool := s.GenerateWeightedPool(context.Background(),
			strategy.LibFuzzerStrategies, MethodMultiArmedBandit, temperature, true)

		assert.True(t, pool.Do(strategy.CorpusMutationMLRNN), "T=%v", temperature)
		assert.True(t, pool.Do(strategy.RandomMaxLen), "T=%v", temperature)
		assert.True(t, pool.Do(strategy.ValueProfile), "T=%v", temperature)
		assert.True(t, pool.Do(strategy.RecommendedDict), "T=%v", temperature)
		assert.False(t, pool.Do(strategy.CorpusMutationRadamsa), "T=%v", temperature)
		assert.False(t, pool.Do(strategy.Fork), "T=%v", temperature)
		assert.False(t, pool.Do(strategy.CorpusSubset), "T=%v", temperature)
		assert.True(t, pool.Do(strategy.MutatorPlugin), "T=%v", temperature)
	}
}

func TestWeightedPoolSingleRecordAFL(t *testing.T) {
	dist := distribution.Distribution{{
		Engine: strategy.EngineAFL,
		Combo:  "corpus_mutations_ml_rnn,corpus_subset,",
		Weight: 1,
	}}

	s := newTestSelector(staticLoader(dist), alwaysRand)
	pool := s.GenerateWeightedPool(context.Background(),
		strategy.AFLStrategies, MethodMultiArmedBandit, MediumTemperature, true)

	assert.True(t, pool.Do(strategy.CorpusMutationMLRNN))
	assert.True(t, pool.Do(strategy.CorpusSubset))
	assert.False(t, pool.Do(strategy.CorpusMutationRadamsa))
}

func TestWeightedPoolBoosterDrawCanFail(t *testing.T) {
	dist := distribution.Distribution{{
		Engine: strategy.EngineLibFuzzer,
		Combo:  "corpus_subset,",
		Weight: 1,
	}}

	// sampling uses the same rand source, so a never-succeeding source
	// still picks the sole record but rejects the booster draw
	s := newTestSelector(staticLoader(dist), neverRand)
	pool := s.GenerateWeightedPool(context.Background(),
		strategy.LibFuzzerStrategies, MethodMultiArmedBandit, MediumTemperature, true)

	assert.True(t, pool.Do(strategy.CorpusSubset))
	assert.False(t, pool.Do(strategy.MutatorPlugin))
}

func TestWeightedPoolGeneratorPrecondition(t *testing.T) {
	// even a winning combination cannot enable a requires-generator
	// strategy when no generator is available
	dist := distribution.Distribution{{
		Engine: strategy.EngineAFL,
		Combo:  "corpus_mutations_ml_rnn,corpus_subset,",
		Weight: 1,
	}}

	s := newTestSelector(staticLoader(dist), alwaysRand)
	pool := s.GenerateWeightedPool(context.Background(),
		strategy.AFLStrategies, MethodMultiArmedBandit, MediumTemperature, false)

	assert.False(t, pool.Do(strategy.CorpusMutationMLRNN))
	assert.True(t, pool.Do(strategy.CorpusSubset))
}

func TestWeightedPoolUnknownStrategyNamesIgnored(t *testing.T) {
	dist := distribution.Distribution{{
		Engine: strategy.EngineAFL,
		Combo:  "warp_drive,corpus_subset,",
		Weight: 1,
	}}

	s := newTestSelector(staticLoader(dist), alwaysRand)
	pool := s.GenerateWeightedPool(context.Background(),
		strategy.AFLStrategies, MethodMultiArmedBandit, MediumTemperature, true)

	assert.Equal(t, []string{strategy.CorpusSubset}, pool.Enabled())
}

func TestWeightedPoolExclusionInvariant(t *testing.T) {
	// a record that (incorrectly) names both members of an exclusion
	// group must still produce a valid pool
	dist := distribution.Distribution{{
		Engine: strategy.EngineLibFuzzer,
		Combo:  "corpus_mutations_radamsa,corpus_mutations_ml_rnn,",
		Weight: 1,
	}}

	s := newTestSelector(staticLoader(dist), alwaysRand)
	pool := s.GenerateWeightedPool(context.Background(),
		strategy.LibFuzzerStrategies, MethodMultiArmedBandit, MediumTemperature, true)

	assert.True(t, pool.Do(strategy.CorpusMutationRadamsa))
	assert.False(t, pool.Do(strategy.CorpusMutationMLRNN))
}

func TestBanditSelectionConvergence(t *testing.T) {
	// Scenario: three AFL combinations with weights 0.33/0.34/0.33 and
	// neutral temperature. Over many draws the empirical selection
	// frequency of each record should match its normalized weight.
	dist := distribution.Distribution{
		{Engine: strategy.EngineAFL, Combo: "corpus_mutations_ml_rnn,corpus_subset,", Weight: 0.33},
		{Engine: strategy.EngineAFL, Combo: "corpus_mutations_radamsa,corpus_subset,", Weight: 0.34},
		{Engine: strategy.EngineAFL, Combo: "corpus_subset,", Weight: 0.33},
	}

	s := newTestSelector(staticLoader(dist), rand.New(rand.NewSource(1)))

	const total = 10000
	counts := make([]int, 3)
	for range total {
		pool := s.GenerateWeightedPool(context.Background(),
			strategy.AFLStrategies, MethodMultiArmedBandit, 1, true)
		switch {
		case pool.Do(strategy.CorpusMutationMLRNN):
			counts[0]++
		case pool.Do(strategy.CorpusMutationRadamsa):
			counts[1]++
		default:
			counts[2]++
		}
	}

	weights := []float64{0.33, 0.34, 0.33}
	for i, count := range counts {
		frequency := float64(count) / total
		assert.InDelta(t, weights[i], frequency, 0.05, "record %d", i)
	}
}

func TestTemperatureControlsExploitation(t *testing.T) {
	dist := distribution.Distribution{
		{Engine: strategy.EngineAFL, Combo: "corpus_mutations_radamsa,", Weight: 0.9},
		{Engine: strategy.EngineAFL, Combo: "corpus_subset,", Weight: 0.1},
	}

	const total = 10000
	sample := func(temperature float64) float64 {
		s := newTestSelector(staticLoader(dist), rand.New(rand.NewSource(3)))
		hits := 0
		for range total {
			pool := s.GenerateWeightedPool(context.Background(),
				strategy.AFLStrategies, MethodMultiArmedBandit, temperature, true)
			if pool.Do(strategy.CorpusMutationRadamsa) {
				hits++
			}
		}
		return float64(hits) / total
	}

	// low temperature sharpens toward the highest-weight combination
	assert.Greater(t, sample(0.1), 0.99)
	// high temperature flattens toward uniform
	flat := sample(100)
	assert.Greater(t, flat, 0.45)
	assert.Less(t, flat, 0.60)
}

func TestDefaultPoolGeneratorDoesNotPanic(t *testing.T) {
	s := newTestSelector(emptyLoader(), NewRand())
	s.GenerateDefaultPool(strategy.LibFuzzerStrategies, true)
	s.GenerateDefaultPool(strategy.AFLStrategies, false)
}
