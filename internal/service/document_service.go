package service

import (
	"context"
	"encoding/json"
	"fmt"

	"invoicable/internal/billing"
	"invoicable/internal/config"
	"invoicable/internal/model"
	"invoicable/internal/registry"
	"invoicable/internal/render"
	"invoicable/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

// CreateFields are optional initial values for a new document. Zero values
// fall back to the configured defaults.
type CreateFields struct {
	Currency string
	Status   string
}

// LineInput describes one charge to append to a document.
type LineInput struct {
	Item            registry.Ref
	Amount          int64 // cents; base amount, inclusive or exclusive of tax per Inclusive
	Description     string
	Inclusive       bool
	Taxes           []model.TaxDetail
	IsFree          bool
	IsComplimentary bool
}

// Event is published after every document mutation.
type Event struct {
	Type      string `json:"type"` // document.created, line.added, document.recalculated
	Kind      string `json:"kind"`
	Reference string `json:"reference"`
	Total     int64  `json:"total"`
	Tax       int64  `json:"tax"`
	Discount  int64  `json:"discount"`
}

// EventPublisher fans mutation events out to listeners (the websocket hub).
type EventPublisher interface {
	Publish(event any)
}

// --- Interface ---

type DocumentService interface {
	// Kind returns the document kind this instance manages (bill or invoice).
	Kind() string

	Create(ctx context.Context, related registry.Ref, fields CreateFields) (*model.Document, error)

	// AddAmountExclTax and AddAmountInclTax are the simplified single-rate
	// forms; AddLine is the full form carrying queued tax rules and flags.
	AddAmountExclTax(ctx context.Context, doc *model.Document, item registry.Ref, amount int64, description string, rate decimal.Decimal) (*model.Document, error)
	AddAmountInclTax(ctx context.Context, doc *model.Document, item registry.Ref, amount int64, description string, rate decimal.Decimal) (*model.Document, error)
	AddLine(ctx context.Context, doc *model.Document, input LineInput) (*model.Document, error)

	Recalculate(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByReference returns (nil, nil) when no document matches;
	// FindByReferenceOrFail returns an error wrapping billing.ErrNotFound.
	FindByReference(ctx context.Context, reference string) (*model.Document, error)
	FindByReferenceOrFail(ctx context.Context, reference string) (*model.Document, error)

	List(ctx context.Context, page, limit int) ([]model.Document, int64, error)

	Render(ctx context.Context, doc *model.Document, extra map[string]any) (string, error)
	ExportPDF(ctx context.Context, doc *model.Document, extra map[string]any) ([]byte, error)
}

type documentService struct {
	kind      string
	cfg       config.Config
	docs      repository.DocumentRepository
	audits    repository.AuditRepository
	records   *registry.Registry
	txManager repository.TransactionManager
	renderer  *render.Renderer
	converter render.Converter
	events    EventPublisher
	log       zerolog.Logger
}

// NewInvoiceService and NewBillService are the two instantiations of the
// same generic document service; they differ only in kind.

func NewInvoiceService(cfg config.Config, docs repository.DocumentRepository, audits repository.AuditRepository, records *registry.Registry, txManager repository.TransactionManager, renderer *render.Renderer, converter render.Converter, events EventPublisher, log zerolog.Logger) DocumentService {
	return newDocumentService(model.KindInvoice, cfg, docs, audits, records, txManager, renderer, converter, events, log)
}

func NewBillService(cfg config.Config, docs repository.DocumentRepository, audits repository.AuditRepository, records *registry.Registry, txManager repository.TransactionManager, renderer *render.Renderer, converter render.Converter, events EventPublisher, log zerolog.Logger) DocumentService {
	return newDocumentService(model.KindBill, cfg, docs, audits, records, txManager, renderer, converter, events, log)
}

func newDocumentService(kind string, cfg config.Config, docs repository.DocumentRepository, audits repository.AuditRepository, records *registry.Registry, txManager repository.TransactionManager, renderer *render.Renderer, converter render.Converter, events EventPublisher, log zerolog.Logger) DocumentService {
	return &documentService{
		kind:      kind,
		cfg:       cfg,
		docs:      docs,
		audits:    audits,
		records:   records,
		txManager: txManager,
		renderer:  renderer,
		converter: converter,
		events:    events,
		log:       log.With().Str("kind", kind).Logger(),
	}
}

// --- Implementation ---

func (s *documentService) Kind() string {
	return s.kind
}

func (s *documentService) Create(ctx context.Context, related registry.Ref, fields CreateFields) (*model.Document, error) {
	if _, err := s.records.Resolve(ctx, related); err != nil {
		return nil, fmt.Errorf("related record %s: %w", related, err)
	}

	doc := model.Document{
		Kind:        s.kind,
		Status:      fields.Status,
		Currency:    fields.Currency,
		RelatedType: related.Type,
		RelatedID:   related.ID,
	}
	if doc.Currency == "" {
		doc.Currency = s.cfg.Currency
	}

	if err := s.docs.Create(ctx, &doc); err != nil {
		return nil, &billing.PersistenceError{Op: "create " + s.kind, Err: err}
	}

	s.log.Info().Str("reference", doc.Reference).Msg("document created")
	s.writeAudit(ctx, s.createAction(), doc.Reference, related.String(), map[string]string{
		"related_type": related.Type,
		"related_id":   related.ID,
	})
	s.publish("document.created", &doc)

	return &doc, nil
}

func (s *documentService) AddAmountExclTax(ctx context.Context, doc *model.Document, item registry.Ref, amount int64, description string, rate decimal.Decimal) (*model.Document, error) {
	return s.AddLine(ctx, doc, LineInput{
		Item:        item,
		Amount:      amount,
		Description: description,
		Taxes:       billing.SingleRate(rate),
	})
}

func (s *documentService) AddAmountInclTax(ctx context.Context, doc *model.Document, item registry.Ref, amount int64, description string, rate decimal.Decimal) (*model.Document, error) {
	return s.AddLine(ctx, doc, LineInput{
		Item:        item,
		Amount:      amount,
		Description: description,
		Inclusive:   true,
		Taxes:       billing.SingleRate(rate),
	})
}

func (s *documentService) AddLine(ctx context.Context, doc *model.Document, input LineInput) (*model.Document, error) {
	if input.IsFree && input.IsComplimentary {
		return nil, fmt.Errorf("a line cannot be both free and complimentary")
	}
	if _, err := s.records.Resolve(ctx, input.Item); err != nil {
		return nil, fmt.Errorf("invoiceable record %s: %w", input.Item, err)
	}

	var lineAmount, tax int64
	if input.Inclusive {
		lineAmount, tax = billing.TaxInclusive(input.Amount, input.Taxes)
	} else {
		lineAmount, tax = billing.TaxExclusive(input.Amount, input.Taxes)
	}

	line := model.Line{
		DocumentID:      doc.ID,
		Amount:          lineAmount,
		Description:     input.Description,
		Tax:             tax,
		TaxDetails:      input.Taxes,
		IsFree:          input.IsFree,
		IsComplimentary: input.IsComplimentary,
		InvoiceableType: input.Item.Type,
		InvoiceableID:   input.Item.ID,
	}

	// Line creation and recalculation share one transaction so a failure
	// leaves the document's totals unchanged.
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.docs.AddLine(txCtx, &line); err != nil {
			return &billing.PersistenceError{Op: "add line", Err: err}
		}
		return s.recalculate(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, model.ActionAddLine, doc.Reference, input.Description, map[string]any{
		"amount":           line.Amount,
		"tax":              line.Tax,
		"is_free":          line.IsFree,
		"is_complimentary": line.IsComplimentary,
		"invoiceable":      input.Item.String(),
	})
	s.publish("line.added", doc)

	return s.reload(ctx, doc)
}

func (s *documentService) Recalculate(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := s.recalculate(ctx, doc); err != nil {
		return nil, err
	}

	s.writeAudit(ctx, model.ActionRecalculate, doc.Reference, "", nil)
	s.publish("document.recalculated", doc)

	return s.reload(ctx, doc)
}

// recalculate reads the document's full line set, accumulates it and writes
// the derived fields back. Idempotent for an unchanged line set.
func (s *documentService) recalculate(ctx context.Context, doc *model.Document) error {
	lines, err := s.docs.Lines(ctx, doc.ID)
	if err != nil {
		return &billing.PersistenceError{Op: "load lines", Err: err}
	}

	agg := billing.Totals(lines)
	doc.Total = agg.Total
	doc.Tax = agg.Tax
	doc.Discount = agg.Discount

	if err := s.docs.UpdateTotals(ctx, doc); err != nil {
		return &billing.PersistenceError{Op: "update totals", Err: err}
	}
	return nil
}

func (s *documentService) FindByReference(ctx context.Context, reference string) (*model.Document, error) {
	doc, err := s.docs.FindByReference(ctx, s.kind, reference)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, &billing.PersistenceError{Op: "find by reference", Err: err}
	}
	return doc, nil
}

func (s *documentService) FindByReferenceOrFail(ctx context.Context, reference string) (*model.Document, error) {
	doc, err := s.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%s %q: %w", s.kind, reference, billing.ErrNotFound)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, page, limit int) ([]model.Document, int64, error) {
	docs, total, err := s.docs.List(ctx, s.kind, page, limit)
	if err != nil {
		return nil, 0, &billing.PersistenceError{Op: "list", Err: err}
	}
	return docs, total, nil
}

func (s *documentService) Render(ctx context.Context, doc *model.Document, extra map[string]any) (string, error) {
	lines, err := s.docs.Lines(ctx, doc.ID)
	if err != nil {
		return "", &billing.PersistenceError{Op: "load lines", Err: err}
	}

	formatter, err := render.NewMoneyFormatter(doc.Currency, s.cfg.Locale)
	if err != nil {
		return "", &billing.RenderError{Op: "money formatter", Err: err, Details: doc.Currency}
	}

	html, err := s.renderer.Render(s.cfg.ReceiptTemplate, render.ReceiptView{
		Document: doc,
		Lines:    lines,
		Money:    formatter,
		Extra:    extra,
	})
	if err != nil {
		return "", &billing.RenderError{Op: "render receipt", Err: err}
	}
	return html, nil
}

func (s *documentService) ExportPDF(ctx context.Context, doc *model.Document, extra map[string]any) ([]byte, error) {
	html, err := s.Render(ctx, doc, extra)
	if err != nil {
		return nil, err
	}

	pdf, err := s.converter.Convert(ctx, html)
	if err != nil {
		return nil, &billing.RenderError{Op: "convert pdf", Err: err, Details: doc.Reference}
	}

	s.writeAudit(ctx, model.ActionExportPDF, doc.Reference, "", nil)
	return pdf, nil
}

// --- Helpers ---

func (s *documentService) createAction() string {
	if s.kind == model.KindBill {
		return model.ActionCreateBill
	}
	return model.ActionCreateInvoice
}

func (s *documentService) reload(ctx context.Context, doc *model.Document) (*model.Document, error) {
	fresh, err := s.docs.FindByReference(ctx, s.kind, doc.Reference)
	if err != nil {
		return nil, &billing.PersistenceError{Op: "reload", Err: err}
	}
	return fresh, nil
}

// writeAudit records the action best-effort; a failed audit write never
// fails the operation it describes.
func (s *documentService) writeAudit(ctx context.Context, action, reference, name string, details any) {
	detailsJSON, _ := json.Marshal(details)
	entry := model.AuditLog{
		Actor:      ActorFromContext(ctx),
		Action:     action,
		EntityID:   reference,
		EntityName: name,
		Details:    string(detailsJSON),
	}
	if err := s.audits.Log(ctx, &entry); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}

func (s *documentService) publish(eventType string, doc *model.Document) {
	if s.events == nil {
		return
	}
	s.events.Publish(Event{
		Type:      eventType,
		Kind:      s.kind,
		Reference: doc.Reference,
		Total:     doc.Total,
		Tax:       doc.Tax,
		Discount:  doc.Discount,
	})
}
