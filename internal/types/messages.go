package types

// SelectionRequest asks for a strategy pool for one fuzzing session.
// Method and Temperature are optional; the service config supplies
// defaults when they are absent.
type SelectionRequest struct {
	SessionId    string  `json:"session_id"`
	Engine       string  `json:"engine"`
	UseGenerator bool    `json:"use_generator"`
	Method       string  `json:"method,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// SelectionResult is the chosen pool, published back for the session
// launcher to toggle flags and environment state.
type SelectionResult struct {
	SessionId  string   `json:"session_id"`
	Engine     string   `json:"engine"`
	Method     string   `json:"method"`
	Strategies []string `json:"strategies"`
}
