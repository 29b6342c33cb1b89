package analyzers

// Finding is a single heuristic observation about a text passage. All
// analyzers in this package are pure functions text -> findings, no I/O.
type Finding struct {
	Kind        string `json:"kind"`
	Severity    string `json:"severity"` // high, medium, low, positive
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

const (
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityPositive = "positive"
)
