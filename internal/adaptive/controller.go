package adaptive

import (
	"fmt"
	"strings"

	"github.com/selve-org/selve-engine/internal/models"
	"github.com/selve-org/selve-engine/internal/scoring"
)

// Stop reasons are stable outputs propagated to callers; don't reword them.
const (
	ReasonMaxItems  = "Maximum items reached"
	ReasonConfident = "All dimensions have sufficient confidence"
	ReasonExhausted = "No more available items for uncertain dimensions"
)

// ShouldContinue decides whether the session needs more items and why.
// A dimension with nothing answered forces continuation unless the
// total-item cap is hit.
func (e *Engine) ShouldContinue(state *models.SessionState) (bool, string, error) {
	responses := state.Responses()
	if len(responses) >= e.cfg.MaxTotalItems {
		return false, ReasonMaxItems, nil
	}

	// The override keys on answered items only. A dimension whose items are
	// all still pending must keep the session open (the respondent hasn't
	// answered them yet) even though the selector rightly refuses to
	// re-dispatch anything for it.
	answered := make(map[string]struct{}, len(responses))
	for code := range responses {
		answered[code] = struct{}{}
	}
	zeroDims := e.zeroCoverageDims(answered)
	seen := state.Seen()

	uncertainties, err := scoring.AllUncertainties(responses, e.bank, e.cfg)
	if err != nil {
		return false, "", err
	}
	uncertain := []models.Dimension{}
	for _, dim := range models.AllDimensions() {
		if uncertainties[dim].NeedsMore {
			uncertain = append(uncertain, dim)
		}
	}

	if len(uncertain) == 0 {
		if len(zeroDims) > 0 {
			return true, zeroCoverageReason(zeroDims), nil
		}
		return false, ReasonConfident, nil
	}

	// At least one uncertain dimension must still have an unused item
	// somewhere, otherwise asking for more is pointless.
	available := false
	for _, dim := range uncertain {
		for _, item := range e.bank.ItemsByDimension(dim) {
			if _, used := seen[item.Code]; !used {
				available = true
				break
			}
		}
		if available {
			break
		}
	}
	if !available {
		if len(zeroDims) > 0 {
			return true, zeroCoverageReason(zeroDims), nil
		}
		return false, ReasonExhausted, nil
	}

	if len(zeroDims) > 0 {
		return true, zeroCoverageReason(zeroDims), nil
	}
	return true, fmt.Sprintf("%d dimensions below confidence threshold", len(uncertain)), nil
}

func zeroCoverageReason(dims []models.Dimension) string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = string(d)
	}
	return fmt.Sprintf("No coverage yet for dimensions: %s", strings.Join(names, ", "))
}
