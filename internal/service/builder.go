package service

import (
	"context"
	"fmt"

	"invoicable/internal/model"
	"invoicable/internal/registry"

	"github.com/shopspring/decimal"
)

// Builder is the stateful, chainable front of a document-building session.
// It carries pending flags and queued tax rules between calls: SetFree and
// SetComplimentary are mutually exclusive with last-call-wins semantics, and
// every AddAmount* consumes the pending state, persists the line, then
// resets the state to defaults.
//
// A Builder serves one logical session within one request; it is not safe
// for concurrent use.
type Builder struct {
	svc DocumentService
	doc *model.Document

	pendingFree  bool
	pendingComp  bool
	pendingTaxes []model.TaxDetail

	err error
}

func NewBuilder(svc DocumentService) *Builder {
	return &Builder{svc: svc}
}

// Create starts the session with a freshly created document.
func (b *Builder) Create(ctx context.Context, related registry.Ref, fields CreateFields) *Builder {
	if b.err != nil {
		return b
	}
	b.doc, b.err = b.svc.Create(ctx, related, fields)
	return b
}

// Use starts the session with an existing document.
func (b *Builder) Use(doc *model.Document) *Builder {
	if b.err != nil {
		return b
	}
	b.doc = doc
	return b
}

func (b *Builder) SetFree() *Builder {
	b.pendingFree = true
	b.pendingComp = false
	return b
}

func (b *Builder) SetComplimentary() *Builder {
	b.pendingComp = true
	b.pendingFree = false
	return b
}

// AddTaxPercentage queues a percentage rule for the next AddAmount* call.
func (b *Builder) AddTaxPercentage(identifier string, rate decimal.Decimal) *Builder {
	b.pendingTaxes = append(b.pendingTaxes, model.TaxDetail{Identifier: identifier, Percentage: &rate})
	return b
}

// AddTaxAmount queues a fixed-amount rule (in cents) for the next AddAmount* call.
func (b *Builder) AddTaxAmount(identifier string, cents int64) *Builder {
	b.pendingTaxes = append(b.pendingTaxes, model.TaxDetail{Identifier: identifier, Amount: &cents})
	return b
}

func (b *Builder) AddAmountExclTax(ctx context.Context, item registry.Ref, amount int64, description string) *Builder {
	return b.addAmount(ctx, item, amount, description, false)
}

func (b *Builder) AddAmountInclTax(ctx context.Context, item registry.Ref, amount int64, description string) *Builder {
	return b.addAmount(ctx, item, amount, description, true)
}

func (b *Builder) addAmount(ctx context.Context, item registry.Ref, amount int64, description string, inclusive bool) *Builder {
	if b.err != nil {
		return b
	}
	if b.doc == nil {
		b.err = fmt.Errorf("no document in session: call Create or Use first")
		return b
	}

	input := LineInput{
		Item:            item,
		Amount:          amount,
		Description:     description,
		Inclusive:       inclusive,
		Taxes:           b.pendingTaxes,
		IsFree:          b.pendingFree,
		IsComplimentary: b.pendingComp,
	}

	// Pending state is consumed by this add regardless of outcome.
	b.pendingFree = false
	b.pendingComp = false
	b.pendingTaxes = nil

	b.doc, b.err = b.svc.AddLine(ctx, b.doc, input)
	return b
}

func (b *Builder) Recalculate(ctx context.Context) *Builder {
	if b.err != nil {
		return b
	}
	if b.doc == nil {
		b.err = fmt.Errorf("no document in session: call Create or Use first")
		return b
	}
	b.doc, b.err = b.svc.Recalculate(ctx, b.doc)
	return b
}

// Document returns the session's current document.
func (b *Builder) Document() *model.Document {
	return b.doc
}

// Err returns the first error the chain ran into, if any.
func (b *Builder) Err() error {
	return b.err
}
