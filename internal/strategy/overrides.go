package strategy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides is an optional operator-provided YAML file adjusting base
// probabilities per strategy, e.g. to turn a strategy off for one
// deployment without a rebuild:
//
//	probabilities:
//	  corpus_subset: 0.8
//	  fork: 0
type Overrides struct {
	Probabilities map[string]float64 `yaml:"probabilities"`
}

func LoadOverrides(path string) (*Overrides, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides Overrides
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file: %w", err)
	}

	for name, p := range overrides.Probabilities {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probability for %s out of range: %v", name, p)
		}
	}

	return &overrides, nil
}

// WithOverrides returns a copy of the list with overridden base
// probabilities. Unknown names in the overrides are ignored.
func (l List) WithOverrides(overrides *Overrides) List {
	if overrides == nil || len(overrides.Probabilities) == 0 {
		return l
	}

	strategies := make([]Strategy, len(l.Strategies))
	copy(strategies, l.Strategies)
	for i := range strategies {
		if p, ok := overrides.Probabilities[strategies[i].Name]; ok {
			strategies[i].BaseProbability = p
		}
	}
	return List{Engine: l.Engine, Strategies: strategies}
}
