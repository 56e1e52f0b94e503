package scoring

import (
	"github.com/selve-org/selve-engine/internal/bank"
	"github.com/selve-org/selve-engine/internal/models"
)

// Normalize maps a raw response onto [0,1] using the item's own scale
// bounds, flipping reverse-keyed items. Scale bounds are item-level; the
// bank mixes 1-5 and 1-7 items so there is no global scale to assume.
func Normalize(item models.Item, rawValue int) (float64, error) {
	if rawValue < item.ScaleMin || rawValue > item.ScaleMax {
		return 0, &models.OutOfRangeError{
			Code:  item.Code,
			Value: rawValue,
			Min:   item.ScaleMin,
			Max:   item.ScaleMax,
		}
	}
	x := float64(rawValue-item.ScaleMin) / float64(item.ScaleMax-item.ScaleMin)
	if item.Reversed {
		x = 1 - x
	}
	return x, nil
}

// Score computes the 0-100 score for every dimension from the answered
// responses. A dimension with no answered items gets the midpoint score
// marked NoData so downstream consumers don't mistake it for a measured
// moderate trait.
func Score(responses map[string]int, b *bank.ItemBank) (map[models.Dimension]models.DimensionScore, error) {
	values, err := normalizedByDimension(responses, b)
	if err != nil {
		return nil, err
	}

	scores := make(map[models.Dimension]models.DimensionScore, len(models.AllDimensions()))
	for _, dim := range models.AllDimensions() {
		xs := values[dim]
		if len(xs) == 0 {
			scores[dim] = models.DimensionScore{
				Dimension:      dim,
				Score:          50.0,
				NItems:         0,
				Interpretation: models.InterpModerate,
				NoData:         true,
			}
			continue
		}
		score := 100 * mean(xs)
		scores[dim] = models.DimensionScore{
			Dimension:      dim,
			Score:          score,
			NItems:         len(xs),
			Interpretation: Interpret(score),
		}
	}
	return scores, nil
}

// normalizedByDimension groups the normalized values of all answered items
// by dimension. Unknown codes and out-of-range values are hard errors.
func normalizedByDimension(responses map[string]int, b *bank.ItemBank) (map[models.Dimension][]float64, error) {
	values := make(map[models.Dimension][]float64)
	for code, raw := range responses {
		item, err := b.Item(code)
		if err != nil {
			return nil, err
		}
		x, err := Normalize(item, raw)
		if err != nil {
			return nil, err
		}
		values[item.Dimension] = append(values[item.Dimension], x)
	}
	return values, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleVariance uses the n-1 denominator; callers guard n >= 2.
func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}
