package replay

// Diagnostic records one skipped group or entry and why.
type Diagnostic struct {
	Rule     string     `json:"rule"`
	Table    string     `json:"table"`
	TargetID string     `json:"target_id"`
	Reason   SkipReason `json:"reason"`
	Message  string     `json:"message,omitempty"`
}

// RuleSummary is the per-rule outcome of a pass.
type RuleSummary struct {
	Rule     string `json:"rule"`
	Entity   string `json:"entity"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}

// Summary is the structured result of one reconciliation pass. It is
// returned even when groups were skipped; only a store failure makes the
// whole invocation fail.
type Summary struct {
	PassID      string        `json:"pass_id"`
	Selected    int           `json:"selected"`
	Inserted    int           `json:"inserted"`
	Updated     int           `json:"updated"`
	Skipped     int           `json:"skipped"`
	Rules       []RuleSummary `json:"rules"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

func (s *Summary) skip(rs *RuleSummary, d Diagnostic) {
	s.Skipped++
	rs.Skipped++
	s.Diagnostics = append(s.Diagnostics, d)
}
