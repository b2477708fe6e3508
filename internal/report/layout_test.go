package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/types"
)

func makeItems(n int) []types.ShoppingItem {
	items := make([]types.ShoppingItem, n)
	for i := range items {
		items[i] = types.ShoppingItem{Name: fmt.Sprintf("item%03d", i), MeasurementUnit: "g", Amount: int64(i + 1)}
	}
	return items
}

func TestLayoutEmpty(t *testing.T) {
	pages := Layout(nil)
	require.Len(t, pages, 1)
	assert.Equal(t, []Line{{X: 50, Y: 800, Size: EmptyFontSize, Text: EmptyText}}, pages[0].Lines)
}

func TestLayoutSingleItem(t *testing.T) {
	pages := Layout([]types.ShoppingItem{{Name: "flour", MeasurementUnit: "g", Amount: 300}})
	require.Len(t, pages, 1)
	assert.Equal(t, []Line{
		{X: 50, Y: 800, Size: FontSize, Text: Title},
		{X: 50, Y: 780, Size: FontSize, Text: "1. flour - 300 g."},
	}, pages[0].Lines)
}

func TestLayoutPageBoundary(t *testing.T) {
	tests := []struct {
		items int
		pages int
	}{
		{1, 1},
		{49, 1},
		{50, 1},
		{51, 2},
		{100, 2},
		{101, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items", tt.items), func(t *testing.T) {
			assert.Len(t, Layout(makeItems(tt.items)), tt.pages)
		})
	}
}

func TestLayoutContinuesOnNextPage(t *testing.T) {
	pages := Layout(makeItems(51))
	require.Len(t, pages, 2)

	// title plus fifty items
	first := pages[0].Lines
	require.Len(t, first, 51)
	last := first[len(first)-1]
	assert.Equal(t, 800.0-20-15*49, last.Y)
	assert.Equal(t, "50. item049 - 50 g.", last.Text)

	second := pages[1].Lines
	require.Len(t, second, 1)
	assert.Equal(t, Line{X: 50, Y: 780, Size: FontSize, Text: "51. item050 - 51 g."}, second[0])
}

func TestLayoutNumbersItemsInOrder(t *testing.T) {
	pages := Layout(makeItems(3))
	lines := pages[0].Lines
	assert.Equal(t, "1. item000 - 1 g.", lines[1].Text)
	assert.Equal(t, "2. item001 - 2 g.", lines[2].Text)
	assert.Equal(t, "3. item002 - 3 g.", lines[3].Text)
	assert.Greater(t, lines[1].Y, lines[2].Y)
}
