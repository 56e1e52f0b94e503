package bank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/selve-org/selve-engine/internal/models"
)

type bankFile struct {
	Items []models.Item `yaml:"items"`
}

// LoadBank reads and parses the item bank YAML file. Loading happens once at
// startup; the engine never touches the filesystem after this.
func LoadBank(path string) (*ItemBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item bank file: %w", err)
	}

	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item bank YAML: %w", err)
	}
	if len(file.Items) == 0 {
		return nil, fmt.Errorf("item bank %s contains no items", path)
	}

	b, err := New(file.Items)
	if err != nil {
		return nil, fmt.Errorf("invalid item bank %s: %w", path, err)
	}
	return b, nil
}
