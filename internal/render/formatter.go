package render

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyFormatter renders minor-unit amounts as localized money strings. It
// is bound to one currency and one locale, matching the document it is
// created for.
type MoneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

func NewMoneyFormatter(code, locale string) (*MoneyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, err
	}
	return &MoneyFormatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Format renders an amount of cents, e.g. 12150 EUR -> "EUR 121.50".
func (f *MoneyFormatter) Format(cents int64) string {
	major := decimal.New(cents, -2)
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(major.InexactFloat64())))
}

// Currency returns the ISO code the formatter is bound to.
func (f *MoneyFormatter) Currency() string {
	return f.unit.String()
}
