// Package exchange defines the contract for live exchange-rate sources.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/amirasaad/fxconverter/pkg/currency"
)

// Common errors for exchange rate sources
var (
	// ErrRateUnavailable indicates the source could not produce a quote.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrInvalidRate indicates the source answered with an unusable rate.
	ErrInvalidRate = errors.New("invalid exchange rate received")
)

// RateInfo is a single quote: units of To per one unit of From.
type RateInfo struct {
	FromCurrency currency.Code `json:"from_currency"`
	ToCurrency   currency.Code `json:"to_currency"`
	Rate         float64       `json:"rate"`
	Timestamp    time.Time     `json:"timestamp"`
	Provider     string        `json:"provider"`
}

// ProviderMetadata contains metadata about a provider
type ProviderMetadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Exchange fetches live quotes for a currency pair.
type Exchange interface {
	// FetchRate issues a single request for the pair. Implementations must not
	// retry and must return an error wrapping ErrRateUnavailable or
	// ErrInvalidRate on failure.
	FetchRate(ctx context.Context, from, to currency.Code) (*RateInfo, error)

	// Metadata returns the provider's metadata
	Metadata() ProviderMetadata
}

// ValidateRate rejects zero, negative, NaN and infinite rates.
func ValidateRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return nil
}
