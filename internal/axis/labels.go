package axis

import "github.com/leekchan/accounting"

var usd = accounting.DefaultAccounting("$", 2)

// FormatCurrency prints value in dollars. The divisor depends on the
// magnitude of the visible range, not on the value: ranges above a million
// print in millions (M), ranges above a thousand in thousands (K).
func FormatCurrency(value, magnitude float64) string {
	switch {
	case magnitude > 1_000_000:
		return usd.FormatMoneyFloat64(value/1_000_000) + "M"
	case magnitude > 1_000:
		return usd.FormatMoneyFloat64(value/1_000) + "K"
	default:
		return usd.FormatMoneyFloat64(value)
	}
}
