package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeOverridesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverrides(t *testing.T) {
	path := writeOverridesFile(t, "probabilities:\n  corpus_subset: 0.8\n  fork: 0\n")

	overrides, err := LoadOverrides(path)
	assert.NoError(t, err)
	assert.Equal(t, 0.8, overrides.Probabilities["corpus_subset"])
	assert.Equal(t, 0.0, overrides.Probabilities["fork"])
}

func TestLoadOverridesOutOfRange(t *testing.T) {
	path := writeOverridesFile(t, "probabilities:\n  corpus_subset: 1.5\n")

	_, err := LoadOverrides(path)
	assert.Error(t, err)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWithOverrides(t *testing.T) {
	overrides := &Overrides{Probabilities: map[string]float64{
		CorpusSubset:      0.8,
		"unknown_setting": 0.3,
	}}

	adjusted := LibFuzzerStrategies.WithOverrides(overrides)

	s, ok := adjusted.Lookup(CorpusSubset)
	assert.True(t, ok)
	assert.Equal(t, 0.8, s.BaseProbability)

	// original list is untouched
	s, ok = LibFuzzerStrategies.Lookup(CorpusSubset)
	assert.True(t, ok)
	assert.Equal(t, 0.5, s.BaseProbability)
}

func TestWithOverridesNil(t *testing.T) {
	adjusted := LibFuzzerStrategies.WithOverrides(nil)
	assert.Equal(t, LibFuzzerStrategies, adjusted)
}
