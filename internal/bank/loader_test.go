package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selve-org/selve-engine/internal/models"
)

func writeBankFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBank(t *testing.T) {
	path := writeBankFile(t, `
items:
  - code: opn_01
    text: "I enjoy exploring ideas that have no practical use."
    dimension: openness
    scale_min: 1
    scale_max: 5
    correlation: 0.82
  - code: ems_03
    text: "I worry about things that might go wrong."
    dimension: emotional_stability
    reversed: true
    scale_min: 1
    scale_max: 7
    correlation: 0.76
`)

	b, err := LoadBank(path)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Size())

	item, err := b.Item("ems_03")
	require.NoError(t, err)
	assert.True(t, item.Reversed)
	assert.Equal(t, 7, item.ScaleMax)
	assert.Equal(t, models.DimEmotionalStability, item.Dimension)
}

func TestLoadBankMissingFile(t *testing.T) {
	_, err := LoadBank(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBankEmpty(t *testing.T) {
	path := writeBankFile(t, "items: []\n")
	_, err := LoadBank(path)
	assert.Error(t, err)
}

func TestLoadBankMalformedItem(t *testing.T) {
	path := writeBankFile(t, `
items:
  - code: opn_01
    text: "scale is inverted"
    dimension: openness
    scale_min: 5
    scale_max: 1
    correlation: 0.8
`)
	_, err := LoadBank(path)
	require.Error(t, err)
	var bad *models.BadItemError
	assert.ErrorAs(t, err, &bad)
}
