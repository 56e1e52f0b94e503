package session

import (
	"github.com/selve-org/selve-engine/internal/adaptive"
	"github.com/selve-org/selve-engine/internal/models"
)

// PairDedup keeps the second member of a consistency pair out of selection
// while the session is young. Early on, asking both members back to back
// reads as a duplicate question; once minResponses answers exist the
// partner becomes selectable again so the deliberate cross-check injection
// can use it.
func PairDedup(pairs []models.ConsistencyPair, minResponses int) adaptive.DedupFunc {
	return func(responses map[string]int, pending map[string]struct{}) map[string]struct{} {
		if len(responses) >= minResponses {
			return nil
		}
		seen := func(code string) bool {
			if _, ok := responses[code]; ok {
				return true
			}
			_, ok := pending[code]
			return ok
		}
		out := make(map[string]struct{})
		for _, pair := range pairs {
			if seen(pair.CodeA) {
				out[pair.CodeB] = struct{}{}
			}
			if seen(pair.CodeB) {
				out[pair.CodeA] = struct{}{}
			}
		}
		return out
	}
}

// DemographicExclusions builds an ExclusionFunc from static rules mapping
// "field=value" to item codes that should never reach such respondents.
func DemographicExclusions(rules map[string][]string) ExclusionFunc {
	return func(demographics map[string]string) map[string]struct{} {
		out := make(map[string]struct{})
		for field, value := range demographics {
			for _, code := range rules[field+"="+value] {
				out[code] = struct{}{}
			}
		}
		return out
	}
}
