package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	fontFamily = "DejaVu"
	FileName   = "shoppingcart.pdf"
)

// Renderer draws shopping lists with an embedded TrueType font. It holds no
// mutable state and is safe for concurrent use.
type Renderer struct {
	font []byte
}

// LoadFont reads the TrueType font used for every document. Callers treat a
// failure as fatal: without the font no list can be rendered.
func LoadFont(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font %s is empty", path)
	}
	return data, nil
}

// NewRenderer checks that font can be embedded before accepting it.
func NewRenderer(font []byte) (*Renderer, error) {
	r := &Renderer{font: font}
	if _, err := r.newDocument(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) newDocument() (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Shopping list", true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)
	// an unparsable font is skipped silently and only surfaces on SetFont
	pdf.SetFont(fontFamily, "", FontSize)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return pdf, nil
}

// Render writes the PDF for items to w. An empty list produces a single
// page with a placeholder message.
func (r *Renderer) Render(w io.Writer, items []types.ShoppingItem) error {
	pdf, err := r.newDocument()
	if err != nil {
		return err
	}

	_, pageHeight := pdf.GetPageSize()
	for _, page := range Layout(items) {
		pdf.AddPage()
		for _, line := range page.Lines {
			pdf.SetFont(fontFamily, "", line.Size)
			// fpdf measures y from the top edge
			pdf.Text(line.X, pageHeight-line.Y, line.Text)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
