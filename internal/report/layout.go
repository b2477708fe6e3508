// Package report renders a shopping list as a PDF document.
package report

import (
	"fmt"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Coordinates are PDF points with the origin at the bottom-left corner.
const (
	marginX     = 50.0
	top         = 800.0
	bottom      = 50.0
	indent      = 20.0
	lineSpacing = 15.0

	FontSize      = 14.0
	EmptyFontSize = 24.0

	Title     = "Cписок покупок:"
	EmptyText = "Cписок покупок пуст!"
)

// Line is a piece of text anchored at its baseline start
type Line struct {
	X, Y float64
	Size float64
	Text string
}

type Page struct {
	Lines []Line
}

// Layout places the title and one line per item. The title is written once
// at the top of the first page; items follow one line spacing apart and
// continue on a fresh page once the cursor reaches the bottom margin. A page
// is only started when a line is about to be placed on it.
func Layout(items []types.ShoppingItem) []Page {
	if len(items) == 0 {
		return []Page{{Lines: []Line{{X: marginX, Y: top, Size: EmptyFontSize, Text: EmptyText}}}}
	}

	pages := []Page{{Lines: []Line{{X: marginX, Y: top, Size: FontSize, Text: Title}}}}
	y := top
	flushed := false
	for i, item := range items {
		if flushed {
			pages = append(pages, Page{})
			flushed = false
		}
		current := &pages[len(pages)-1]
		current.Lines = append(current.Lines, Line{
			X:    marginX,
			Y:    y - indent,
			Size: FontSize,
			Text: ItemLine(i+1, item),
		})

		y -= lineSpacing
		if y <= bottom {
			flushed = true
			y = top
		}
	}
	return pages
}

// ItemLine formats the index-th (1-based) item, e.g. "1. flour - 300 g."
func ItemLine(index int, item types.ShoppingItem) string {
	return fmt.Sprintf("%d. %s - %d %s.", index, item.Name, item.Amount, item.MeasurementUnit)
}
