// Package billing holds the pure arithmetic of the invoicing engine: tax
// computation for a single line and total/tax/discount accumulation over a
// document's full line set. Amounts are int64 minor units (cents); rates are
// decimals so intermediate math never touches floating point.
package billing

import (
	"github.com/shopspring/decimal"

	"invoicable/internal/model"
)

var one = decimal.NewFromInt(1)

// TaxExclusive computes the line amount and tax for a base amount that does
// not yet include tax. Each percentage rule contributes amount*p, each fixed
// rule contributes its amount; the line amount is the base plus all
// contributions. Negative bases propagate algebraically.
func TaxExclusive(amount int64, rules []model.TaxDetail) (lineAmount, tax int64) {
	base := decimal.NewFromInt(amount)
	for _, rule := range rules {
		if rule.Amount != nil {
			tax += *rule.Amount
			continue
		}
		if rule.Percentage != nil {
			tax += base.Mul(*rule.Percentage).Round(0).IntPart()
		}
	}
	return amount + tax, tax
}

// TaxInclusive computes the tax contained in a base amount that already
// includes it. Percentage rules back the tax out via amount*p/(1+p); fixed
// rules contribute their amount. The line amount is the base, unchanged.
func TaxInclusive(amount int64, rules []model.TaxDetail) (lineAmount, tax int64) {
	base := decimal.NewFromInt(amount)
	for _, rule := range rules {
		if rule.Amount != nil {
			tax += *rule.Amount
			continue
		}
		if rule.Percentage != nil {
			p := *rule.Percentage
			tax += base.Mul(p).Div(one.Add(p)).Round(0).IntPart()
		}
	}
	return amount, tax
}

// SingleRate wraps a bare percentage rate as a one-element rule list, the
// simplified form used when no rules were queued.
func SingleRate(rate decimal.Decimal) []model.TaxDetail {
	return []model.TaxDetail{{Identifier: "tax", Percentage: &rate}}
}
