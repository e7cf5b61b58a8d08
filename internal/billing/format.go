package billing

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxDescriptionRunes = 40

func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(MoneyPlaces)
	}
	return "$" + d.StringFixed(MoneyPlaces)
}

func FormatHours(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FormatPercent(d decimal.Decimal) string {
	return d.Round(MoneyPlaces).String() + "%"
}

// truncate shortens s to fit a table cell, marking the cut with an ellipsis.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDescriptionRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxDescriptionRunes-3]) + "..."
}
