package selection

import "sort"

// StrategyPool is the immutable decision for one fuzzing session: which
// strategies the launcher should turn on. Safe to share read-only once
// built.
type StrategyPool struct {
	engine  string
	enabled map[string]struct{}
}

func newStrategyPool(engine string, enabled map[string]struct{}) *StrategyPool {
	return &StrategyPool{engine: engine, enabled: enabled}
}

func (p *StrategyPool) Engine() string {
	return p.engine
}

// Do reports whether the named strategy is enabled. Names not recognized
// for this pool's engine simply report false; launchers probe a shared
// superset of strategy names across engines.
func (p *StrategyPool) Do(name string) bool {
	_, ok := p.enabled[name]
	return ok
}

// Enabled returns the enabled strategy names in sorted order, for
// logging and the decision audit record.
func (p *StrategyPool) Enabled() []string {
	names := make([]string, 0, len(p.enabled))
	for name := range p.enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
