package scoring

import (
	"math"

	"github.com/selve-org/selve-engine/internal/bank"
	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/models"
)

// Component weights of the uncertainty heuristic. Variance captures a
// respondent contradicting themselves on a trait, midpoint proximity
// captures answers clustering near neutral, sample size captures plain
// lack of data.
const (
	weightVariance   = 0.35
	weightMidpoint   = 0.35
	weightSampleSize = 0.30
)

// Uncertainty estimates how trustworthy the current score for dim is and
// how many more items are worth asking. Codes that don't resolve in the
// bank carry no dimension tag and are skipped; the scorer is the place
// that rejects them.
func Uncertainty(responses map[string]int, dim models.Dimension, b *bank.ItemBank, cfg config.EngineConfig) (models.DimensionUncertainty, error) {
	if !dim.Valid() {
		return models.DimensionUncertainty{}, &models.UnknownDimensionError{Dimension: dim}
	}

	xs := make([]float64, 0, 8)
	for code, raw := range responses {
		item, err := b.Item(code)
		if err != nil {
			continue
		}
		if item.Dimension != dim {
			continue
		}
		x, err := Normalize(item, raw)
		if err != nil {
			return models.DimensionUncertainty{}, err
		}
		xs = append(xs, x)
	}

	n := len(xs)
	if n == 0 {
		return models.DimensionUncertainty{
			Dimension:             dim,
			Uncertainty:           1.0,
			NAnswered:             0,
			NeedsMore:             true,
			RecommendedAdditional: cfg.MinItemsPerDimension,
		}, nil
	}

	variance := sampleVariance(xs)
	score := 100 * mean(xs)

	uVar := math.Min(variance/cfg.VarianceCeiling, 1)
	uMid := math.Max(0, (cfg.MidpointHalfwidth-math.Abs(score-50))/cfg.MidpointHalfwidth)
	uN := math.Max(0, float64(cfg.MinConfidentItems-n)/float64(cfg.MinConfidentItems))

	uncertainty := weightVariance*uVar + weightMidpoint*uMid + weightSampleSize*uN
	needsMore := uncertainty > cfg.UncertaintyThreshold || n < cfg.MinItemsPerDimension

	return models.DimensionUncertainty{
		Dimension:             dim,
		Uncertainty:           uncertainty,
		NAnswered:             n,
		Variance:              variance,
		NeedsMore:             needsMore,
		RecommendedAdditional: recommendAdditional(uncertainty, needsMore, n, cfg),
	}, nil
}

// AllUncertainties computes the uncertainty for every dimension.
func AllUncertainties(responses map[string]int, b *bank.ItemBank, cfg config.EngineConfig) (map[models.Dimension]models.DimensionUncertainty, error) {
	out := make(map[models.Dimension]models.DimensionUncertainty, len(models.AllDimensions()))
	for _, dim := range models.AllDimensions() {
		u, err := Uncertainty(responses, dim, b, cfg)
		if err != nil {
			return nil, err
		}
		out[dim] = u
	}
	return out, nil
}

func recommendAdditional(uncertainty float64, needsMore bool, n int, cfg config.EngineConfig) int {
	if !needsMore {
		return 0
	}
	var rec int
	switch {
	case uncertainty > 0.8:
		rec = 4
	case uncertainty > 0.7:
		rec = 3
	default:
		rec = 2
	}
	if room := cfg.MaxItemsPerDimension - n; rec > room {
		rec = room
	}
	if rec < 0 {
		rec = 0
	}
	return rec
}
