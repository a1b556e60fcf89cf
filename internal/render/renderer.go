// Package render produces the HTML receipt for a document and converts it
// to PDF. Templates are embedded; the PDF conversion sits behind a small
// interface so tests can stub the external binary.
package render

import (
	"bytes"
	"embed"
	"html/template"

	"invoicable/internal/model"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// ReceiptView is the view model handed to the receipt template.
type ReceiptView struct {
	Document *model.Document
	Lines    []model.Line
	Money    *MoneyFormatter
	Extra    map[string]any
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template against the view model and returns the
// resulting markup.
func (r *Renderer) Render(name string, view ReceiptView) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".tmpl", view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
