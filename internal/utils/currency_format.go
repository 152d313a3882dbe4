package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatWithCurrency renders amount with the symbol and precision of an ISO 4217 currency,
// e.g. 1234.5 in USD is "$1,234.50" and 12.3456 in JPY is "¥12".
// Unknown codes fall back to the plain amount followed by the code.
func FormatWithCurrency(amount decimal.Decimal, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	cur := money.GetCurrency(code)
	if cur == nil {
		return strings.TrimSpace(FormatWithPrecision(amount, 2) + " " + code)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// FormatWithPrecision formats an amount with exactly precision decimal places.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}
