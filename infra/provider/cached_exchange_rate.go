// Package provider holds decorators around live quote sources.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxconverter/pkg/cache"
	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
	"golang.org/x/sync/singleflight"
)

// CachedExchangeRate serves quotes from a cache and collapses concurrent
// fetches of the same pair into one upstream request. Only successful quotes
// are stored.
type CachedExchangeRate struct {
	next     exchange.Exchange
	cache    cache.RateCache
	ttl      time.Duration
	logger   *slog.Logger
	inflight singleflight.Group
}

// NewCachedExchangeRate creates a new CachedExchangeRate.
func NewCachedExchangeRate(
	next exchange.Exchange,
	c cache.RateCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedExchangeRate {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedExchangeRate{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.With("provider", "cached"),
	}
}

// CacheKey is the cache key for a pair.
func CacheKey(from, to currency.Code) string {
	return fmt.Sprintf("%s:%s", from, to)
}

// FetchRate implements exchange.Exchange.
func (c *CachedExchangeRate) FetchRate(
	ctx context.Context,
	from, to currency.Code,
) (*exchange.RateInfo, error) {
	key := CacheKey(from, to)

	if rate, err := c.cache.Get(ctx, key); err == nil && rate != nil {
		c.logger.Debug("Cache hit for FetchRate", "key", key)
		return rate, nil
	} else if err != nil {
		c.logger.Error("Error getting from cache", "key", key, "error", err)
	}

	c.logger.Debug("Cache miss for FetchRate, fetching from next provider", "key", key)

	ch := c.inflight.DoChan(key, func() (any, error) {
		rate, err := c.next.FetchRate(ctx, from, to)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, rate, c.ttl); err != nil {
			c.logger.Error("Error setting cache for FetchRate", "key", key, "error", err)
		}
		return rate, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// A shared call may have been cancelled by the caller that started
			// it; retry on our own context rather than report its cancellation.
			if res.Shared && ctx.Err() == nil && isContextErr(res.Err) {
				return c.next.FetchRate(ctx, from, to)
			}
			return nil, res.Err
		}
		rate := *res.Val.(*exchange.RateInfo)
		return &rate, nil
	}
}

// Metadata implements exchange.Exchange.
func (c *CachedExchangeRate) Metadata() exchange.ProviderMetadata {
	md := c.next.Metadata()
	md.Name = fmt.Sprintf("Cached(%s)", md.Name)
	return md
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Ensure CachedExchangeRate implements exchange.Exchange
var _ exchange.Exchange = (*CachedExchangeRate)(nil)
