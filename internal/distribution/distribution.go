package distribution

import "strings"

// Record is one historically observed strategy combination with its
// effectiveness weight, as stored per engine.
type Record struct {
	Engine string  `json:"engine"`
	Combo  string  `json:"combo"`
	Weight float64 `json:"weight"`
}

// Distribution is the ordered set of records for one engine at the time
// of one selection call. Empty is valid: the engine has no history yet.
type Distribution []Record

// Strategies parses the delimited combination string into its non-empty
// strategy names. Combos are written with a trailing comma
// ("fork,corpus_subset,"), so empty tokens are dropped.
func (r Record) Strategies() []string {
	tokens := strings.Split(r.Combo, ",")
	names := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		names = append(names, token)
	}
	return names
}
