// Package adaptive decides which items to send next and when the
// assessment is done. Selection is deterministic given the same state,
// bank, and exclusions: items are always taken in correlation-descending
// order with code as the tie-break.
package adaptive

import (
	"sort"

	"github.com/selve-org/selve-engine/internal/bank"
	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/models"
	"github.com/selve-org/selve-engine/internal/scoring"
	"github.com/selve-org/selve-engine/internal/validation"
)

// DedupFunc lets the enclosing system exclude extra codes per selection
// round (near-duplicate wording, experiment arms). The engine treats the
// returned set as opaque additional exclusions.
type DedupFunc func(responses map[string]int, pending map[string]struct{}) map[string]struct{}

// Engine selects batches and decides continuation against a fixed bank.
type Engine struct {
	bank  *bank.ItemBank
	cfg   config.EngineConfig
	dedup DedupFunc
}

func New(b *bank.ItemBank, cfg config.EngineConfig) *Engine {
	return &Engine{bank: b, cfg: cfg}
}

// WithDedup returns a copy of the engine using fn for per-round dedup.
func (e *Engine) WithDedup(fn DedupFunc) *Engine {
	clone := *e
	clone.dedup = fn
	return &clone
}

// SelectNextBatch picks up to maxItems items to dispatch next. It never
// returns a code in responses, pending, contextExclusions, or the dedup
// set. An empty result is a normal outcome meaning "wait for the
// respondent" (everything useful is already on screen) or "bank
// exhausted"; ShouldContinue distinguishes the two. The caller moves the
// returned codes into pending on dispatch; this method does not.
func (e *Engine) SelectNextBatch(state *models.SessionState, contextExclusions map[string]struct{}, maxItems int) ([]models.Item, error) {
	if maxItems <= 0 {
		maxItems = e.cfg.DefaultBatchSize
	}

	responses := state.Responses()
	pending := state.Pending()
	seen := state.Seen()

	excluded := make(map[string]struct{}, len(seen)+len(contextExclusions))
	for code := range seen {
		excluded[code] = struct{}{}
	}
	for code := range contextExclusions {
		excluded[code] = struct{}{}
	}
	if e.dedup != nil {
		for code := range e.dedup(responses, pending) {
			excluded[code] = struct{}{}
		}
	}

	// Zero-coverage detection runs first. Pending counts toward coverage:
	// an item already on the respondent's screen must never be re-sent.
	zeroDims := e.zeroCoverageDims(seen)
	if len(zeroDims) > 0 {
		return e.emergencyBatch(zeroDims, excluded, maxItems), nil
	}

	batch, err := e.normalBatch(responses, excluded, maxItems)
	if err != nil {
		return nil, err
	}

	// Redundant unless exclusions changed mid-selection, but cheap.
	batch = dropExcluded(batch, contextExclusions)

	e.injectConsistencyCheck(batch, responses, pending, excluded)
	return batch, nil
}

// zeroCoverageDims returns dimensions with nothing answered and nothing
// pending, most starved first (canonical order breaks the tie since all
// have zero answered).
func (e *Engine) zeroCoverageDims(seen map[string]struct{}) []models.Dimension {
	sent := make(map[models.Dimension]int)
	for code := range seen {
		if item, err := e.bank.Item(code); err == nil {
			sent[item.Dimension]++
		}
	}
	zero := []models.Dimension{}
	for _, dim := range models.AllDimensions() {
		if sent[dim] == 0 {
			zero = append(zero, dim)
		}
	}
	return zero
}

// emergencyBatch takes the best un-excluded items for each uncovered
// dimension. When it comes back empty every candidate is already pending;
// the caller must wait for answers, not re-dispatch.
func (e *Engine) emergencyBatch(zeroDims []models.Dimension, excluded map[string]struct{}, maxItems int) []models.Item {
	batch := []models.Item{}
	for _, dim := range zeroDims {
		if len(batch) >= maxItems {
			break
		}
		taken := 0
		for _, item := range e.bank.ItemsByDimension(dim) {
			if taken >= e.cfg.EmergencyBatchPerDim || len(batch) >= maxItems {
				break
			}
			if _, skip := excluded[item.Code]; skip {
				continue
			}
			batch = append(batch, item)
			excluded[item.Code] = struct{}{}
			taken++
		}
	}
	return batch
}

// normalBatch fills the batch by uncertainty priority: the least trusted
// dimensions get their recommended item counts first.
func (e *Engine) normalBatch(responses map[string]int, excluded map[string]struct{}, maxItems int) ([]models.Item, error) {
	uncertainties, err := scoring.AllUncertainties(responses, e.bank, e.cfg)
	if err != nil {
		return nil, err
	}

	needy := []models.DimensionUncertainty{}
	for _, dim := range models.AllDimensions() {
		if u := uncertainties[dim]; u.NeedsMore {
			needy = append(needy, u)
		}
	}
	// Stable sort keeps canonical dimension order on equal uncertainty,
	// which makes selection fully deterministic.
	sort.SliceStable(needy, func(i, j int) bool {
		return needy[i].Uncertainty > needy[j].Uncertainty
	})

	batch := []models.Item{}
	for _, u := range needy {
		if len(batch) >= maxItems {
			break
		}
		taken := 0
		for _, item := range e.bank.ItemsByDimension(u.Dimension) {
			if taken >= u.RecommendedAdditional || len(batch) >= maxItems {
				break
			}
			if _, skip := excluded[item.Code]; skip {
				continue
			}
			batch = append(batch, item)
			excluded[item.Code] = struct{}{}
			taken++
		}
	}
	return batch, nil
}

// injectConsistencyCheck swaps the lowest-priority slot of a non-empty
// batch for a pair partner of something already answered, once enough
// responses exist to make the cross-check meaningful.
func (e *Engine) injectConsistencyCheck(batch []models.Item, responses map[string]int, pending map[string]struct{}, excluded map[string]struct{}) {
	if len(batch) == 0 || len(responses) < e.cfg.ConsistencyMinResponse {
		return
	}
	code, ok := validation.ConsistencyTarget(responses, pending, e.cfg.ConsistencyPairs, e.cfg.ConsistencyMinResponse)
	if !ok {
		return
	}
	// By this point excluded also holds everything selected into the batch,
	// so this covers both "already selected on its own merits" and codes
	// barred for this respondent.
	if _, skip := excluded[code]; skip {
		return
	}
	target, err := e.bank.Item(code)
	if err != nil {
		return // pair references a code outside the bank; config problem
	}
	batch[len(batch)-1] = target
}

func dropExcluded(batch []models.Item, exclusions map[string]struct{}) []models.Item {
	if len(exclusions) == 0 {
		return batch
	}
	out := batch[:0]
	for _, item := range batch {
		if _, skip := exclusions[item.Code]; skip {
			continue
		}
		out = append(out, item)
	}
	return out
}
