package config

import "github.com/selve-org/selve-engine/internal/models"

// EngineConfig holds every tunable of the adaptive engine. The zero value is
// not usable; start from DefaultEngineConfig and override via the config file
// or environment.
type EngineConfig struct {
	UncertaintyThreshold   float64 `mapstructure:"uncertainty_threshold"`
	MinItemsPerDimension   int     `mapstructure:"min_items_per_dimension"`
	MaxItemsPerDimension   int     `mapstructure:"max_items_per_dimension"`
	MaxTotalItems          int     `mapstructure:"max_total_items"`
	DefaultBatchSize       int     `mapstructure:"default_batch_size"`
	EmergencyBatchPerDim   int     `mapstructure:"emergency_batch_per_dim"`
	VarianceCeiling        float64 `mapstructure:"variance_ceiling"`
	MidpointHalfwidth      float64 `mapstructure:"midpoint_halfwidth"`
	MinConfidentItems      int     `mapstructure:"min_confident_items"`
	ConsistencyMinResponse int     `mapstructure:"consistency_min_responses"`

	ConsistencyPairs []models.ConsistencyPair `mapstructure:"consistency_pairs"`
}

// DefaultEngineConfig returns the design constants of the engine.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		UncertaintyThreshold:   0.5,
		MinItemsPerDimension:   4,
		MaxItemsPerDimension:   12,
		MaxTotalItems:          70,
		DefaultBatchSize:       10,
		EmergencyBatchPerDim:   2,
		VarianceCeiling:        0.15,
		MidpointHalfwidth:      20,
		MinConfidentItems:      5,
		ConsistencyMinResponse: 10,
	}
}
