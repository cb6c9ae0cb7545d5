// Package cache defines storage for recently fetched live quotes.
package cache

import (
	"context"
	"time"

	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
)

// RateCache stores live quotes by key. A miss is (nil, nil).
type RateCache interface {
	Get(ctx context.Context, key string) (*exchange.RateInfo, error)
	Set(ctx context.Context, key string, rate *exchange.RateInfo, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
