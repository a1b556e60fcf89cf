package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderChainedSession(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	b := NewBuilder(env.invoices).
		Create(ctx, env.customerRef(), CreateFields{}).
		AddTaxPercentage("vat", decimal.RequireFromString("0.21")).
		AddAmountExclTax(ctx, env.productRef(), 100, "first").
		AddTaxPercentage("vat", decimal.RequireFromString("0.21")).
		AddAmountExclTax(ctx, env.productRef(), 100, "second")

	require.NoError(t, b.Err())
	doc := b.Document()
	assert.Equal(t, int64(242), doc.Total)
	assert.Equal(t, int64(42), doc.Tax)
}

func TestBuilderPendingTaxesAreConsumed(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	// The queued rule applies to the first add only; the second line gets
	// no tax.
	b := NewBuilder(env.invoices).
		Create(ctx, env.customerRef(), CreateFields{}).
		AddTaxPercentage("vat", decimal.RequireFromString("0.21")).
		AddAmountExclTax(ctx, env.productRef(), 100, "taxed").
		AddAmountExclTax(ctx, env.productRef(), 100, "untaxed")

	require.NoError(t, b.Err())
	doc := b.Document()
	assert.Equal(t, int64(221), doc.Total)
	assert.Equal(t, int64(21), doc.Tax)
}

func TestBuilderMultipleQueuedRules(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	b := NewBuilder(env.invoices).
		Create(ctx, env.customerRef(), CreateFields{}).
		AddTaxPercentage("vat", decimal.RequireFromString("0.21")).
		AddTaxAmount("stamp", 10).
		AddAmountExclTax(ctx, env.productRef(), 200, "mixed")

	require.NoError(t, b.Err())
	doc := b.Document()
	assert.Equal(t, int64(252), doc.Total)
	assert.Equal(t, int64(52), doc.Tax)
}

func TestBuilderFreeComplimentaryLastCallWins(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	// SetFree then SetComplimentary: the line lands in the complimentary
	// bucket only.
	b := NewBuilder(env.bills).
		Create(ctx, env.customerRef(), CreateFields{}).
		SetFree().
		SetComplimentary().
		AddAmountInclTax(ctx, env.productRef(), 121, "comped")

	require.NoError(t, b.Err())
	doc := b.Document()
	assert.Zero(t, doc.Total)
	assert.Equal(t, int64(121), doc.Discount)

	require.Len(t, doc.Lines, 1)
	assert.False(t, doc.Lines[0].IsFree)
	assert.True(t, doc.Lines[0].IsComplimentary)
}

func TestBuilderFlagsResetAfterAdd(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	b := NewBuilder(env.invoices).
		Create(ctx, env.customerRef(), CreateFields{}).
		SetFree().
		AddAmountInclTax(ctx, env.productRef(), 121, "free line").
		AddAmountInclTax(ctx, env.productRef(), 121, "paid line")

	require.NoError(t, b.Err())
	doc := b.Document()
	assert.Equal(t, int64(121), doc.Total)
	assert.Equal(t, int64(121), doc.Discount)
}

func TestBuilderRequiresDocument(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	b := NewBuilder(env.invoices).
		AddAmountExclTax(ctx, env.productRef(), 100, "orphan line")

	assert.Error(t, b.Err())
	assert.Nil(t, b.Document())
}

func TestBuilderUseExistingDocument(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	doc, err := env.invoices.Create(ctx, env.customerRef(), CreateFields{})
	require.NoError(t, err)

	b := NewBuilder(env.invoices).
		Use(doc).
		AddAmountExclTax(ctx, env.productRef(), 100, "later addition").
		Recalculate(ctx)

	require.NoError(t, b.Err())
	assert.Equal(t, int64(100), b.Document().Total)
}
