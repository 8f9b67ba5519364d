package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogProbabilitiesInRange(t *testing.T) {
	for _, list := range []List{LibFuzzerStrategies, AFLStrategies} {
		for _, s := range list.Strategies {
			assert.GreaterOrEqual(t, s.BaseProbability, 0.0, "strategy %s", s.Name)
			assert.LessOrEqual(t, s.BaseProbability, 1.0, "strategy %s", s.Name)
		}
	}
}

func TestCatalogNamesUnique(t *testing.T) {
	for _, list := range []List{LibFuzzerStrategies, AFLStrategies} {
		seen := make(map[string]bool)
		for _, s := range list.Strategies {
			assert.False(t, seen[s.Name], "duplicate strategy %s in %s list", s.Name, list.Engine)
			seen[s.Name] = true
		}
	}
}

func TestCorpusMutationStrategiesShareGroup(t *testing.T) {
	radamsa, ok := LibFuzzerStrategies.Lookup(CorpusMutationRadamsa)
	assert.True(t, ok)
	mlRNN, ok := LibFuzzerStrategies.Lookup(CorpusMutationMLRNN)
	assert.True(t, ok)

	assert.NotEmpty(t, radamsa.ExclusionGroup)
	assert.Equal(t, radamsa.ExclusionGroup, mlRNN.ExclusionGroup)
	assert.True(t, mlRNN.RequiresGenerator)
}

func TestListForEngine(t *testing.T) {
	list, ok := ListForEngine(EngineLibFuzzer)
	assert.True(t, ok)
	assert.Equal(t, EngineLibFuzzer, list.Engine)

	list, ok = ListForEngine(EngineAFL)
	assert.True(t, ok)
	assert.Equal(t, EngineAFL, list.Engine)

	_, ok = ListForEngine("honggfuzz")
	assert.False(t, ok)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := LibFuzzerStrategies.Lookup("no_such_strategy")
	assert.False(t, ok)
}
