package strategy

// Strategy is a single togglable test-generation technique.
// Values are fixed at startup; a List is never mutated after being built.
type Strategy struct {
	// Name is the identifier used in distribution records and launcher flags.
	Name string

	// Probability of enabling the strategy on the default selection path.
	BaseProbability float64

	// Strategies sharing a non-empty ExclusionGroup are mutually exclusive.
	// At most one member of a group is enabled per pool; the first member
	// in list order whose draw succeeds wins.
	ExclusionGroup string

	// RequiresGenerator strategies are skipped outright when the caller
	// has no generator available, regardless of probability.
	RequiresGenerator bool

	// Booster strategies are layered add-ons: even when a historical
	// combination wins on the bandit path, they still get their own
	// probability draw afterwards.
	Booster bool
}

// List is the ordered strategy table for one fuzzing engine.
// Order is significant: it is the exclusion-group tie break.
type List struct {
	Engine     string
	Strategies []Strategy
}

const (
	EngineLibFuzzer = "libFuzzer"
	EngineAFL       = "afl"
)

// exclusion groups
const (
	groupCorpusMutations = "corpus_mutations"
)

// strategy names, shared with the distribution store and the launchers
const (
	CorpusMutationRadamsa = "corpus_mutations_radamsa"
	CorpusMutationMLRNN   = "corpus_mutations_ml_rnn"
	CorpusSubset          = "corpus_subset"
	RandomMaxLen          = "random_max_len"
	RecommendedDict       = "recommended_dict"
	ValueProfile          = "value_profile"
	Fork                  = "fork"
	MutatorPlugin         = "mutator_plugin"
)

// LibFuzzerStrategies is the strategy table for the libFuzzer launcher.
// Radamsa is listed before ml rnn, so with both eligible radamsa is drawn
// first within the corpus mutations group.
var LibFuzzerStrategies = List{
	Engine: EngineLibFuzzer,
	Strategies: []Strategy{
		{Name: CorpusMutationRadamsa, BaseProbability: 0.05, ExclusionGroup: groupCorpusMutations},
		{Name: CorpusMutationMLRNN, BaseProbability: 0.50, ExclusionGroup: groupCorpusMutations, RequiresGenerator: true},
		{Name: CorpusSubset, BaseProbability: 0.50},
		{Name: RandomMaxLen, BaseProbability: 0.15},
		{Name: RecommendedDict, BaseProbability: 0.10},
		{Name: ValueProfile, BaseProbability: 0.33},
		{Name: Fork, BaseProbability: 0.10},
		{Name: MutatorPlugin, BaseProbability: 0.10, Booster: true},
	},
}

// AFLStrategies is the strategy table for the AFL launcher.
var AFLStrategies = List{
	Engine: EngineAFL,
	Strategies: []Strategy{
		{Name: CorpusMutationRadamsa, BaseProbability: 0.05, ExclusionGroup: groupCorpusMutations},
		{Name: CorpusMutationMLRNN, BaseProbability: 0.50, ExclusionGroup: groupCorpusMutations, RequiresGenerator: true},
		{Name: CorpusSubset, BaseProbability: 0.50},
	},
}

// ListForEngine returns the strategy table for the given engine.
func ListForEngine(engine string) (List, bool) {
	switch engine {
	case EngineLibFuzzer:
		return LibFuzzerStrategies, true
	case EngineAFL:
		return AFLStrategies, true
	}
	return List{}, false
}

// Lookup returns the strategy with the given name, if the list has one.
func (l List) Lookup(name string) (Strategy, bool) {
	for _, s := range l.Strategies {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}
