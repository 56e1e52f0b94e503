package scoring

import "github.com/selve-org/selve-engine/internal/models"

// Interpretation cutoffs live here and nowhere else; selector logic never
// looks at buckets, only at raw scores and uncertainties.
var cutoffs = []struct {
	below  float64
	bucket models.Interpretation
}{
	{25, models.InterpVeryLow},
	{40, models.InterpLow},
	{60, models.InterpModerate},
	{75, models.InterpHigh},
}

// Interpret buckets a 0-100 score: <25 very_low, <40 low, <60 moderate,
// <75 high, otherwise very_high.
func Interpret(score float64) models.Interpretation {
	for _, c := range cutoffs {
		if score < c.below {
			return c.bucket
		}
	}
	return models.InterpVeryHigh
}
