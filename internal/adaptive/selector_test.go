package adaptive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selve-org/selve-engine/internal/bank"
	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/models"
)

// itemsPerDim controls the shared test bank: every dimension gets items
// code "<dim>_1".."<dim>_N" with strictly decreasing correlations.
func testBank(t *testing.T, itemsPerDim int) *bank.ItemBank {
	t.Helper()
	items := []models.Item{}
	for di, dim := range models.AllDimensions() {
		for i := 0; i < itemsPerDim; i++ {
			items = append(items, models.Item{
				Code:        dimCode(dim, i+1),
				Text:        fmt.Sprintf("question %d about %s", i+1, dim),
				Dimension:   dim,
				ScaleMin:    1,
				ScaleMax:    5,
				Correlation: 0.9 - 0.05*float64(i) - 0.001*float64(di),
			})
		}
	}
	b, err := bank.New(items)
	require.NoError(t, err)
	return b
}

func dimCode(dim models.Dimension, i int) string {
	return fmt.Sprintf("%s_%d", dim, i)
}

func stateWith(t *testing.T, answers map[string]int) *models.SessionState {
	t.Helper()
	state := models.NewSessionState()
	for code, v := range answers {
		require.NoError(t, state.RecordAnswer(code, v, 0))
	}
	return state
}

// Two confident answers per dimension is still below the per-dimension
// minimum, so the selector tops every dimension up by two.
func TestSelectorTopsUpShallowDimensions(t *testing.T) {
	b := testBank(t, 5)
	engine := New(b, config.DefaultEngineConfig())

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 4
		answers[dimCode(dim, 2)] = 4
	}
	state := stateWith(t, answers)

	batch, err := engine.SelectNextBatch(state, nil, 100)
	require.NoError(t, err)

	perDim := map[models.Dimension]int{}
	for _, item := range batch {
		perDim[item.Dimension]++
	}
	for _, dim := range models.AllDimensions() {
		assert.Equal(t, 2, perDim[dim], "dimension %s", dim)
	}
}

// A dimension answered 1-and-5 outranks dimensions answered 3-and-3 and
// receives the largest share of the next batch.
func TestSelectorPrioritizesContradictoryDimension(t *testing.T) {
	b := testBank(t, 5)
	engine := New(b, config.DefaultEngineConfig())

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 3
		answers[dimCode(dim, 2)] = 3
	}
	answers[dimCode(models.DimOpenness, 1)] = 1
	answers[dimCode(models.DimOpenness, 2)] = 5
	state := stateWith(t, answers)

	batch, err := engine.SelectNextBatch(state, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	perDim := map[models.Dimension]int{}
	for _, item := range batch {
		perDim[item.Dimension]++
	}
	assert.Equal(t, models.DimOpenness, batch[0].Dimension)
	for _, dim := range models.AllDimensions()[1:] {
		assert.Greater(t, perDim[models.DimOpenness], perDim[dim], "dimension %s", dim)
	}
}

// Selection never returns anything already answered, pending, excluded by
// context, or excluded by the dedup callback.
func TestSelectorNeverRepeatsSeenOrExcluded(t *testing.T) {
	b := testBank(t, 5)
	dedupSet := map[string]struct{}{dimCode(models.DimOpenness, 4): {}}
	engine := New(b, config.DefaultEngineConfig()).WithDedup(
		func(map[string]int, map[string]struct{}) map[string]struct{} { return dedupSet },
	)

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 2
	}
	state := stateWith(t, answers)
	state.DispatchBatch([]string{dimCode(models.DimOpenness, 2)})

	contextExcl := map[string]struct{}{dimCode(models.DimOpenness, 3): {}}

	batch, err := engine.SelectNextBatch(state, contextExcl, 100)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	forbidden := state.Seen()
	for code := range contextExcl {
		forbidden[code] = struct{}{}
	}
	for code := range dedupSet {
		forbidden[code] = struct{}{}
	}
	seenInBatch := map[string]struct{}{}
	for _, item := range batch {
		_, dup := seenInBatch[item.Code]
		assert.False(t, dup, "duplicate %s in batch", item.Code)
		seenInBatch[item.Code] = struct{}{}
		_, bad := forbidden[item.Code]
		assert.False(t, bad, "excluded code %s selected", item.Code)
	}
}

// A dimension with no answered and no pending items pre-empts everything
// else, highest-correlation items first.
func TestSelectorEmergencyCoverage(t *testing.T) {
	b := testBank(t, 5)
	cfg := config.DefaultEngineConfig()
	engine := New(b, cfg)

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		if dim == models.DimResilience {
			continue
		}
		answers[dimCode(dim, 1)] = 3
	}
	state := stateWith(t, answers)

	batch, err := engine.SelectNextBatch(state, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	// Emergency mode serves only the starved dimension.
	assert.Len(t, batch, cfg.EmergencyBatchPerDim)
	for _, item := range batch {
		assert.Equal(t, models.DimResilience, item.Dimension)
	}
	assert.Equal(t, dimCode(models.DimResilience, 1), batch[0].Code)
}

func TestSelectorEmergencySkipsExcludedItems(t *testing.T) {
	b := testBank(t, 5)
	engine := New(b, config.DefaultEngineConfig())

	state := models.NewSessionState()
	excl := map[string]struct{}{
		dimCode(models.DimOpenness, 1): {},
		dimCode(models.DimOpenness, 2): {},
	}

	batch, err := engine.SelectNextBatch(state, excl, 100)
	require.NoError(t, err)

	var openness []string
	for _, item := range batch {
		if item.Dimension == models.DimOpenness {
			openness = append(openness, item.Code)
		}
	}
	assert.Equal(t, []string{dimCode(models.DimOpenness, 3), dimCode(models.DimOpenness, 4)}, openness)
}

// When every item of a starved dimension is already pending, the selector
// returns nothing: the caller waits for the respondent instead of
// re-sending what is on screen.
func TestSelectorAllPendingDimensionReturnsEmpty(t *testing.T) {
	items := []models.Item{}
	for _, dim := range models.AllDimensions() {
		n := 5
		if dim == models.DimResilience {
			n = 2
		}
		for i := 0; i < n; i++ {
			items = append(items, models.Item{
				Code:        dimCode(dim, i+1),
				Text:        "q",
				Dimension:   dim,
				ScaleMin:    1,
				ScaleMax:    5,
				Correlation: 0.9 - 0.05*float64(i),
			})
		}
	}
	b, err := bank.New(items)
	require.NoError(t, err)
	engine := New(b, config.DefaultEngineConfig())

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		if dim == models.DimResilience {
			continue
		}
		for i := 1; i <= 5; i++ {
			answers[dimCode(dim, i)] = 5
		}
	}
	state := stateWith(t, answers)
	state.DispatchBatch([]string{dimCode(models.DimResilience, 1), dimCode(models.DimResilience, 2)})

	batch, err := engine.SelectNextBatch(state, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

// After enough responses, the lowest-priority slot of the batch is swapped
// for the unanswered partner of an already-answered pair item.
func TestSelectorInjectsConsistencyCheck(t *testing.T) {
	b := testBank(t, 5)
	cfg := config.DefaultEngineConfig()
	target := dimCode(models.DimResilience, 5)
	cfg.ConsistencyPairs = []models.ConsistencyPair{
		{CodeA: dimCode(models.DimEmotionalStability, 1), CodeB: target, Concept: "recovery speed"},
	}
	engine := New(b, cfg)

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 3
	}
	for _, dim := range models.AllDimensions()[:4] {
		answers[dimCode(dim, 2)] = 3
	}
	state := stateWith(t, answers)
	require.GreaterOrEqual(t, state.AnswerCount(), cfg.ConsistencyMinResponse)

	batch, err := engine.SelectNextBatch(state, nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	assert.Equal(t, target, batch[len(batch)-1].Code)
}

// Below the response threshold no swap happens.
func TestSelectorNoInjectionEarly(t *testing.T) {
	b := testBank(t, 5)
	cfg := config.DefaultEngineConfig()
	target := dimCode(models.DimResilience, 5)
	cfg.ConsistencyPairs = []models.ConsistencyPair{
		{CodeA: dimCode(models.DimEmotionalStability, 1), CodeB: target, Concept: "recovery speed"},
	}
	engine := New(b, cfg)

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 3
	}
	state := stateWith(t, answers)

	batch, err := engine.SelectNextBatch(state, nil, 5)
	require.NoError(t, err)
	for _, item := range batch {
		assert.NotEqual(t, target, item.Code)
	}
}

// A pair partner barred for this respondent is never swapped in, whether
// the bar comes from context exclusions or the dedup callback.
func TestSelectorInjectionSkipsExcludedTarget(t *testing.T) {
	b := testBank(t, 5)
	cfg := config.DefaultEngineConfig()
	target := dimCode(models.DimResilience, 5)
	cfg.ConsistencyPairs = []models.ConsistencyPair{
		{CodeA: dimCode(models.DimEmotionalStability, 1), CodeB: target, Concept: "recovery speed"},
	}

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 3
	}
	for _, dim := range models.AllDimensions()[:4] {
		answers[dimCode(dim, 2)] = 3
	}

	engine := New(b, cfg)
	batch, err := engine.SelectNextBatch(stateWith(t, answers), map[string]struct{}{target: {}}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, batch)
	for _, item := range batch {
		assert.NotEqual(t, target, item.Code)
	}

	engine = New(b, cfg).WithDedup(
		func(map[string]int, map[string]struct{}) map[string]struct{} {
			return map[string]struct{}{target: {}}
		},
	)
	batch, err = engine.SelectNextBatch(stateWith(t, answers), nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, batch)
	for _, item := range batch {
		assert.NotEqual(t, target, item.Code)
	}
}

// Selection is a pure function of its inputs: same state, same batch.
func TestSelectorDeterministic(t *testing.T) {
	b := testBank(t, 5)
	engine := New(b, config.DefaultEngineConfig())

	answers := map[string]int{}
	for _, dim := range models.AllDimensions() {
		answers[dimCode(dim, 1)] = 2
	}

	first, err := engine.SelectNextBatch(stateWith(t, answers), nil, 10)
	require.NoError(t, err)
	second, err := engine.SelectNextBatch(stateWith(t, answers), nil, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelectorRespectsMaxItems(t *testing.T) {
	b := testBank(t, 5)
	engine := New(b, config.DefaultEngineConfig())

	batch, err := engine.SelectNextBatch(models.NewSessionState(), nil, 3)
	require.NoError(t, err)
	assert.Len(t, batch, 3)
}
