package currency

// fallbackRates are rates against one US dollar, used when live quotes are
// unavailable.
var fallbackRates = map[Code]float64{
	USD: 1,
	EUR: 0.85,
	GBP: 0.73,
	JPY: 110.12,
	CAD: 1.25,
	AUD: 1.35,
	CHF: 0.92,
	CNY: 6.45,
	INR: 74.50,
	BRL: 5.20,
}

// FallbackRates returns a copy of the static rate table.
func FallbackRates() map[Code]float64 {
	out := make(map[Code]float64, len(fallbackRates))
	for code, rate := range fallbackRates {
		out[code] = rate
	}
	return out
}

// FallbackRate computes the static rate for a pair as table[to] / table[from].
// Codes missing from the table count as 1.
func FallbackRate(from, to Code) float64 {
	return fallbackRateOf(to) / fallbackRateOf(from)
}

func fallbackRateOf(code Code) float64 {
	if rate, ok := fallbackRates[code]; ok && rate != 0 {
		return rate
	}
	return 1
}
