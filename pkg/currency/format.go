package currency

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayDecimals is the number of fraction digits shown for amounts and rates.
const DisplayDecimals = 2

var printer = message.NewPrinter(language.English)

// FormatAmount rounds v to two fraction digits, e.g. 1101.1999 -> "1101.20".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(DisplayDecimals)
}

// DisplayAmount formats v like FormatAmount but with thousands grouping,
// e.g. 1101.2 -> "1,101.20".
func DisplayAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatAmount(v)
	}
	rounded, _ := decimal.NewFromFloat(v).Round(DisplayDecimals).Float64()
	return printer.Sprintf("%.2f", rounded)
}

// DisplayMoney prefixes DisplayAmount with the symbol of code, e.g. "€ 90.00".
func DisplayMoney(code Code, v float64) string {
	return Symbol(code) + " " + DisplayAmount(v)
}

// DisplayRate renders a quote as "1 USD = 0.90 EUR".
func DisplayRate(from, to Code, rate float64) string {
	return "1 " + from.String() + " = " + DisplayAmount(rate) + " " + to.String()
}
