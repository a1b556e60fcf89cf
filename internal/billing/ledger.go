package billing

import "invoicable/internal/model"

// Aggregate is the result of accumulating a document's lines.
type Aggregate struct {
	Total    int64
	Tax      int64
	Discount int64
}

// Totals partitions lines into free, complimentary and normal buckets and
// accumulates them: free and complimentary lines contribute nothing to total
// or tax and their full amount to discount; normal lines contribute their
// amount, tax and any per-line discount. The result is independent of line
// order and of how many times it is computed.
func Totals(lines []model.Line) Aggregate {
	var agg Aggregate
	for _, line := range lines {
		switch {
		case line.IsFree, line.IsComplimentary:
			agg.Discount += line.Amount
		default:
			agg.Total += line.Amount
			agg.Tax += line.Tax
			agg.Discount += line.Discount
		}
	}
	return agg
}
