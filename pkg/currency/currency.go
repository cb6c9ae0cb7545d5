// Package currency holds the fixed set of currencies the converter offers,
// their display metadata and the static fallback rate table.
package currency

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCurrency is returned for codes outside the supported set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

func (c Code) String() string {
	return string(c)
}

// Supported currency codes
const (
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
	JPY Code = "JPY" // Japanese Yen
	CAD Code = "CAD" // Canadian Dollar
	AUD Code = "AUD" // Australian Dollar
	CHF Code = "CHF" // Swiss Franc
	CNY Code = "CNY" // Chinese Yuan
	INR Code = "INR" // Indian Rupee
	BRL Code = "BRL" // Brazilian Real
)

// Currency describes a selectable currency.
type Currency struct {
	Code   Code   `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

var catalog = []Currency{
	{Code: USD, Name: "US Dollar", Symbol: "$"},
	{Code: EUR, Name: "Euro", Symbol: "€"},
	{Code: GBP, Name: "British Pound", Symbol: "£"},
	{Code: JPY, Name: "Japanese Yen", Symbol: "¥"},
	{Code: CAD, Name: "Canadian Dollar", Symbol: "C$"},
	{Code: AUD, Name: "Australian Dollar", Symbol: "A$"},
	{Code: CHF, Name: "Swiss Franc", Symbol: "CHF"},
	{Code: CNY, Name: "Chinese Yuan", Symbol: "¥"},
	{Code: INR, Name: "Indian Rupee", Symbol: "₹"},
	{Code: BRL, Name: "Brazilian Real", Symbol: "R$"},
}

// All returns the supported currencies in display order.
func All() []Currency {
	out := make([]Currency, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the currency registered under code.
func Lookup(code Code) (Currency, bool) {
	for _, c := range catalog {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// IsSupported reports whether code is one of the supported currencies.
func IsSupported(code Code) bool {
	_, ok := Lookup(code)
	return ok
}

// Parse normalizes s to an upper-case code and checks it is supported.
func Parse(s string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !IsSupported(code) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	return code, nil
}

// Symbol returns the display symbol for code, or the code itself when unknown.
func Symbol(code Code) string {
	if c, ok := Lookup(code); ok {
		return c.Symbol
	}
	return code.String()
}
