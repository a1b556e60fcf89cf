package render

import (
	"context"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Converter turns HTML markup into PDF bytes.
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// WkhtmltopdfConverter shells out to the wkhtmltopdf binary. An explicit
// binary path may be configured; otherwise the binary is resolved from PATH.
type WkhtmltopdfConverter struct{}

func NewWkhtmltopdfConverter(binaryPath string) *WkhtmltopdfConverter {
	if binaryPath != "" {
		wkhtmltopdf.SetPath(binaryPath)
	}
	return &WkhtmltopdfConverter{}
}

func (c *WkhtmltopdfConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}

	pdfg.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(html)))

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, err
	}
	return pdfg.Bytes(), nil
}
