// Package validation estimates how much a respondent's answers can be
// trusted: cross-checks on configured item pairs and pattern checks on the
// ordered answer sequence. Everything here is a pure function of the
// responses delivered in answer order.
package validation

import (
	"math"
	"sort"

	"github.com/selve-org/selve-engine/internal/models"
)

// Flag strings surfaced in validation reports.
const (
	FlagLowConsistency  = "Low consistency on similar questions"
	FlagAllIdentical    = "All responses identical"
	FlagMostlyIdentical = "Over 90% of responses identical"
	FlagZigzag          = "Alternating extreme response pattern"
	FlagUniformTail     = "Last 10 responses identical"
)

const (
	lowConsistencyCutoff = 70.0
	patternDeduction     = 20.0
	uniformTailLength    = 10
)

// Validate scores the consistency and attention quality of the responses so
// far. The slice must be in answer order; the pattern checks depend on it.
func Validate(ordered []models.Response, pairs []models.ConsistencyPair) models.ValidationReport {
	report := models.ValidationReport{
		ConsistencyScore: 100,
		AttentionScore:   100,
		Flags:            []string{},
		Patterns:         []string{},
	}

	answered := make(map[string]int, len(ordered))
	for _, r := range ordered {
		answered[r.Code] = r.RawValue
	}

	report.Pairs = checkPairs(answered, pairs)
	if len(report.Pairs) > 0 {
		sum := 0.0
		for _, p := range report.Pairs {
			sum += p.ConsistencyPct
		}
		report.ConsistencyScore = sum / float64(len(report.Pairs))
	}
	if report.ConsistencyScore < lowConsistencyCutoff {
		report.Flags = append(report.Flags, FlagLowConsistency)
	}

	values := make([]int, len(ordered))
	for i, r := range ordered {
		values[i] = r.RawValue
	}
	for _, pattern := range detectPatterns(values) {
		report.Patterns = append(report.Patterns, pattern)
		report.Flags = append(report.Flags, pattern)
		report.AttentionScore -= patternDeduction
	}
	if report.AttentionScore < 0 {
		report.AttentionScore = 0
	}

	report.MedianLatencyMs = medianLatency(ordered)
	return report
}

// checkPairs evaluates every configured pair with both members answered.
// Pair differences are taken on the raw values and judged against an
// assumed 1-5 scale: 25 consistency points per step of disagreement.
func checkPairs(answered map[string]int, pairs []models.ConsistencyPair) []models.PairResult {
	results := []models.PairResult{}
	for _, pair := range pairs {
		a, okA := answered[pair.CodeA]
		b, okB := answered[pair.CodeB]
		if !okA || !okB {
			continue
		}
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		pct := math.Max(0, 100-25*float64(diff))
		results = append(results, models.PairResult{
			CodeA:          pair.CodeA,
			CodeB:          pair.CodeB,
			Concept:        pair.Concept,
			Diff:           diff,
			ConsistencyPct: pct,
			Consistent:     diff <= 1,
		})
	}
	return results
}

func detectPatterns(values []int) []string {
	patterns := []string{}
	n := len(values)

	if n >= 3 && allIdentical(values) {
		patterns = append(patterns, FlagAllIdentical)
	}
	if n >= 10 && modeShare(values) >= 0.9 {
		patterns = append(patterns, FlagMostlyIdentical)
	}
	if n >= 6 && perfectZigzag(values) {
		patterns = append(patterns, FlagZigzag)
	}
	if n >= 10 && allIdentical(values[n-uniformTailLength:]) {
		patterns = append(patterns, FlagUniformTail)
	}
	return patterns
}

func allIdentical(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func modeShare(values []int) float64 {
	counts := make(map[int]int)
	best := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
		}
	}
	return float64(best) / float64(len(values))
}

// perfectZigzag means every adjacent pair of answers jumps at least three
// scale steps, the signature of someone bouncing between extremes.
func perfectZigzag(values []int) bool {
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d < 0 {
			d = -d
		}
		if d < 3 {
			return false
		}
	}
	return true
}

func medianLatency(ordered []models.Response) float64 {
	latencies := []float64{}
	for _, r := range ordered {
		if r.LatencyMs > 0 {
			latencies = append(latencies, r.LatencyMs)
		}
	}
	if len(latencies) == 0 {
		return 0
	}
	sort.Float64s(latencies)
	mid := len(latencies) / 2
	if len(latencies)%2 == 1 {
		return latencies[mid]
	}
	return (latencies[mid-1] + latencies[mid]) / 2
}

// ConsistencyTarget nominates an unanswered, not-yet-dispatched item whose
// pair partner the respondent has already seen. Returns false until at
// least minResponses items are answered or when no pair qualifies.
func ConsistencyTarget(responses map[string]int, pending map[string]struct{}, pairs []models.ConsistencyPair, minResponses int) (string, bool) {
	if len(responses) < minResponses {
		return "", false
	}
	seen := func(code string) bool {
		if _, ok := responses[code]; ok {
			return true
		}
		_, ok := pending[code]
		return ok
	}
	for _, pair := range pairs {
		seenA, seenB := seen(pair.CodeA), seen(pair.CodeB)
		if seenA && !seenB {
			return pair.CodeB, true
		}
		if seenB && !seenA {
			return pair.CodeA, true
		}
	}
	return "", false
}
