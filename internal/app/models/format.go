package models

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders an amount as US dollars with thousands separators, e.g. "$1,234.50".
func FormatAmount(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	if f < 0 {
		return usPrinter.Sprintf("-$%.2f", -f)
	}
	return usPrinter.Sprintf("$%.2f", f)
}
