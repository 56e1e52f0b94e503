package models

// Dimension is one of the eight trait dimensions the assessment scores on.
// The set is fixed at startup; the engine never invents new tags.
type Dimension string

const (
	DimOpenness           Dimension = "openness"
	DimConscientiousness  Dimension = "conscientiousness"
	DimExtraversion       Dimension = "extraversion"
	DimAgreeableness      Dimension = "agreeableness"
	DimEmotionalStability Dimension = "emotional_stability"
	DimHonestyHumility    Dimension = "honesty_humility"
	DimAssertiveness      Dimension = "assertiveness"
	DimResilience         Dimension = "resilience"
)

// AllDimensions returns the fixed dimension set in canonical order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimOpenness,
		DimConscientiousness,
		DimExtraversion,
		DimAgreeableness,
		DimEmotionalStability,
		DimHonestyHumility,
		DimAssertiveness,
		DimResilience,
	}
}

// Valid reports whether d is one of the eight known dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimOpenness, DimConscientiousness, DimExtraversion, DimAgreeableness,
		DimEmotionalStability, DimHonestyHumility, DimAssertiveness, DimResilience:
		return true
	}
	return false
}

// Item is a single bank question. Scale bounds are per item: the bank mixes
// 1-5 and 1-7 Likert items, so normalization always looks them up here.
type Item struct {
	Code        string    `yaml:"code" json:"code"`
	Text        string    `yaml:"text" json:"text"`
	Dimension   Dimension `yaml:"dimension" json:"dimension"`
	Reversed    bool      `yaml:"reversed" json:"reversed"`
	ScaleMin    int       `yaml:"scale_min" json:"scaleMin"`
	ScaleMax    int       `yaml:"scale_max" json:"scaleMax"`
	Correlation float64   `yaml:"correlation" json:"correlation"`
}

// Response is one answered item.
type Response struct {
	Code      string  `json:"code"`
	RawValue  int     `json:"rawValue"`
	LatencyMs float64 `json:"latencyMs,omitempty"`
}

// ConsistencyPair configures two items that probe the same concept.
type ConsistencyPair struct {
	CodeA   string `yaml:"code_a" mapstructure:"code_a" json:"codeA"`
	CodeB   string `yaml:"code_b" mapstructure:"code_b" json:"codeB"`
	Concept string `yaml:"concept" mapstructure:"concept" json:"concept"`
}
