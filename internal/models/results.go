package models

// Interpretation is the qualitative bucket for a 0-100 dimension score.
type Interpretation string

const (
	InterpVeryLow  Interpretation = "very_low"
	InterpLow      Interpretation = "low"
	InterpModerate Interpretation = "moderate"
	InterpHigh     Interpretation = "high"
	InterpVeryHigh Interpretation = "very_high"
)

// DimensionScore is the normalized 0-100 score for one dimension.
// NoData marks the synthetic midpoint score emitted when no items for the
// dimension have been answered; the uncertainty estimator treats that as
// zero coverage rather than a genuinely moderate trait.
type DimensionScore struct {
	Dimension      Dimension      `json:"dimension"`
	Score          float64        `json:"score"`
	NItems         int            `json:"nItems"`
	Interpretation Interpretation `json:"interpretation"`
	NoData         bool           `json:"noData,omitempty"`
}

// DimensionUncertainty is the derived trust estimate for one dimension's
// current score. Uncertainty is in [0,1]; higher means less trustworthy.
type DimensionUncertainty struct {
	Dimension             Dimension `json:"dimension"`
	Uncertainty           float64   `json:"uncertainty"`
	NAnswered             int       `json:"nAnswered"`
	Variance              float64   `json:"variance"`
	NeedsMore             bool      `json:"needsMore"`
	RecommendedAdditional int       `json:"recommendedAdditional"`
}

// PairResult is the diagnostic for one completed consistency pair.
type PairResult struct {
	CodeA          string  `json:"codeA"`
	CodeB          string  `json:"codeB"`
	Concept        string  `json:"concept"`
	Diff           int     `json:"diff"`
	ConsistencyPct float64 `json:"consistencyPct"`
	Consistent     bool    `json:"consistent"`
}

// ValidationReport summarizes response quality for a session so far.
type ValidationReport struct {
	ConsistencyScore float64      `json:"consistencyScore"`
	AttentionScore   float64      `json:"attentionScore"`
	Flags            []string     `json:"flags"`
	Pairs            []PairResult `json:"pairs"`
	Patterns         []string     `json:"patterns"`
	MedianLatencyMs  float64      `json:"medianLatencyMs,omitempty"`
}

// Suspicious reports whether any quality flag was raised.
func (r ValidationReport) Suspicious() bool {
	return len(r.Flags) > 0
}
