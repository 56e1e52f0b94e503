package adaptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/models"
)

// Drives a full session loop against a decisive, consistent respondent and
// checks that the engine converges well under the total-item cap with every
// dimension adequately covered.
func TestAdaptiveLoopConvergesForConsistentRespondent(t *testing.T) {
	b := testBank(t, 5)
	cfg := config.DefaultEngineConfig()
	engine := New(b, cfg)
	state := models.NewSessionState()

	var finalReason string
	for turn := 0; ; turn++ {
		require.Less(t, turn, 30, "engine failed to terminate")

		cont, reason, err := engine.ShouldContinue(state)
		require.NoError(t, err)
		if !cont {
			finalReason = reason
			break
		}

		batch, err := engine.SelectNextBatch(state, nil, cfg.DefaultBatchSize)
		require.NoError(t, err)
		require.NotEmpty(t, batch, "continue signal with empty selection and nothing pending")

		codes := make([]string, len(batch))
		for i, item := range batch {
			codes[i] = item.Code
		}
		state.DispatchBatch(codes)

		// Answer everything on screen with a firm "agree".
		for _, code := range state.PendingCodes() {
			require.NoError(t, state.RecordAnswer(code, 4, 800))
		}
	}

	assert.Equal(t, ReasonConfident, finalReason)
	assert.LessOrEqual(t, state.AnswerCount(), cfg.MaxTotalItems)

	perDim := map[models.Dimension]int{}
	for code := range state.Responses() {
		item, err := b.Item(code)
		require.NoError(t, err)
		perDim[item.Dimension]++
	}
	for _, dim := range models.AllDimensions() {
		assert.GreaterOrEqual(t, perDim[dim], cfg.MinItemsPerDimension, "dimension %s", dim)
	}
}

// A self-contradicting respondent (alternating extremes on every trait)
// never reaches confidence; the engine must still stop once the bank runs
// dry.
func TestAdaptiveLoopStopsWhenBankExhausted(t *testing.T) {
	b := testBank(t, 5)
	cfg := config.DefaultEngineConfig()
	engine := New(b, cfg)
	state := models.NewSessionState()
	perDim := map[models.Dimension]int{}

	var finalReason string
	for turn := 0; ; turn++ {
		require.Less(t, turn, 30, "engine failed to terminate")

		cont, reason, err := engine.ShouldContinue(state)
		require.NoError(t, err)
		if !cont {
			finalReason = reason
			break
		}

		batch, err := engine.SelectNextBatch(state, nil, cfg.DefaultBatchSize)
		require.NoError(t, err)
		require.NotEmpty(t, batch)

		codes := make([]string, len(batch))
		for i, item := range batch {
			codes[i] = item.Code
		}
		state.DispatchBatch(codes)
		for _, code := range state.PendingCodes() {
			item, err := b.Item(code)
			require.NoError(t, err)
			value := 1
			if perDim[item.Dimension]%2 == 1 {
				value = 5
			}
			perDim[item.Dimension]++
			require.NoError(t, state.RecordAnswer(code, value, 800))
		}
	}

	assert.Equal(t, ReasonExhausted, finalReason)
	assert.Equal(t, b.Size(), state.AnswerCount())
}
