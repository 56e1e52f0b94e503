package bank

import (
	"sort"

	"github.com/selve-org/selve-engine/internal/models"
)

// ItemBank is the immutable, indexed item collection. Built once at startup
// and shared read-only across sessions; every accessor returns fresh copies
// so callers can mutate results freely.
type ItemBank struct {
	byCode      map[string]models.Item
	byDimension map[models.Dimension][]models.Item
}

// New validates items and builds the indexes. Per-dimension lists are sorted
// by correlation descending, code ascending on ties, which is the selection
// priority order everywhere in the engine.
func New(items []models.Item) (*ItemBank, error) {
	b := &ItemBank{
		byCode:      make(map[string]models.Item, len(items)),
		byDimension: make(map[models.Dimension][]models.Item),
	}

	for _, item := range items {
		if err := checkItem(item); err != nil {
			return nil, err
		}
		if _, dup := b.byCode[item.Code]; dup {
			return nil, &models.BadItemError{Code: item.Code, Reason: "duplicate code"}
		}
		b.byCode[item.Code] = item
		b.byDimension[item.Dimension] = append(b.byDimension[item.Dimension], item)
	}

	for dim := range b.byDimension {
		list := b.byDimension[dim]
		sort.Slice(list, func(i, j int) bool {
			if list[i].Correlation != list[j].Correlation {
				return list[i].Correlation > list[j].Correlation
			}
			return list[i].Code < list[j].Code
		})
	}

	return b, nil
}

func checkItem(item models.Item) error {
	switch {
	case item.Code == "":
		return &models.BadItemError{Code: item.Code, Reason: "empty code"}
	case item.Text == "":
		return &models.BadItemError{Code: item.Code, Reason: "empty text"}
	case !item.Dimension.Valid():
		return &models.BadItemError{Code: item.Code, Reason: "unknown dimension " + string(item.Dimension)}
	case item.ScaleMin >= item.ScaleMax:
		return &models.BadItemError{Code: item.Code, Reason: "scale_min must be below scale_max"}
	case item.Correlation < 0 || item.Correlation > 1:
		return &models.BadItemError{Code: item.Code, Reason: "correlation outside [0,1]"}
	}
	return nil
}

// Item looks up a single item by code.
func (b *ItemBank) Item(code string) (models.Item, error) {
	item, ok := b.byCode[code]
	if !ok {
		return models.Item{}, &models.UnknownItemError{Code: code}
	}
	return item, nil
}

// Has reports whether code exists in the bank.
func (b *ItemBank) Has(code string) bool {
	_, ok := b.byCode[code]
	return ok
}

// ItemsByDimension returns the dimension's items in priority order.
func (b *ItemBank) ItemsByDimension(dim models.Dimension) []models.Item {
	src := b.byDimension[dim]
	out := make([]models.Item, len(src))
	copy(out, src)
	return out
}

// TopK returns the k highest-correlation items for a dimension.
func (b *ItemBank) TopK(dim models.Dimension, k int) []models.Item {
	src := b.byDimension[dim]
	if k > len(src) {
		k = len(src)
	}
	if k < 0 {
		k = 0
	}
	out := make([]models.Item, k)
	copy(out, src[:k])
	return out
}

// Size returns the total number of items.
func (b *ItemBank) Size() int {
	return len(b.byCode)
}

// DimensionCount returns the number of items tagged with dim.
func (b *ItemBank) DimensionCount(dim models.Dimension) int {
	return len(b.byDimension[dim])
}
