// Package conversion resolves exchange rates and drives a single converter
// session: amount input, currency selection, conversion and swap.
package conversion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
)

// RateSource tells where a displayed rate came from.
type RateSource string

const (
	SourceLive     RateSource = "live"
	SourceFallback RateSource = "fallback"
	SourceIdentity RateSource = "identity"
	// SourceInverse marks a rate computed locally as the reciprocal of the
	// previous one after a swap.
	SourceInverse RateSource = "inverse"
)

// FallbackNotice is raised once every time the static table is used.
var FallbackNotice = notify.Notice{
	Title:    "Using Offline Rates",
	Message:  "Live rates unavailable, using fallback data",
	Severity: notify.SeverityDestructive,
}

// RateOutcome is the answer of a resolution.
type RateOutcome struct {
	From     currency.Code `json:"from"`
	To       currency.Code `json:"to"`
	Rate     float64       `json:"rate"`
	Source   RateSource    `json:"source"`
	Provider string        `json:"provider,omitempty"`
}

// RateResolver resolves the rate for a currency pair.
type RateResolver interface {
	Resolve(ctx context.Context, from, to currency.Code) (RateOutcome, error)
}

// Resolver asks the live source once and falls back to the static table on
// any failure.
type Resolver struct {
	exchange exchange.Exchange
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil exchange means every resolution uses
// the fallback table.
func NewResolver(
	ex exchange.Exchange,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Resolver {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		exchange: ex,
		notifier: notifier,
		logger:   logger.With("component", "rate_resolver"),
	}
}

// Resolve returns the rate for from->to. The only error it returns is the
// context's, when ctx was cancelled before the live source answered; in that
// case no fallback is computed and no notice is raised.
func (r *Resolver) Resolve(
	ctx context.Context,
	from, to currency.Code,
) (RateOutcome, error) {
	if from == to {
		return RateOutcome{From: from, To: to, Rate: 1, Source: SourceIdentity}, nil
	}

	if r.exchange != nil {
		info, err := r.fetch(ctx, from, to)
		if err == nil {
			r.logger.Debug("Live rate resolved",
				"from", from, "to", to, "rate", info.Rate, "provider", info.Provider)
			return RateOutcome{
				From:     from,
				To:       to,
				Rate:     info.Rate,
				Source:   SourceLive,
				Provider: info.Provider,
			}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.logger.Debug("Rate resolution cancelled", "from", from, "to", to, "error", err)
			return RateOutcome{}, ctxErr
		}
		r.logger.Warn("Live rate unavailable, using fallback table",
			"from", from, "to", to, "provider", r.exchange.Metadata().Name, "error", err)
	}

	rate := currency.FallbackRate(from, to)
	r.notifier.Notify(ctx, FallbackNotice)
	return RateOutcome{From: from, To: to, Rate: rate, Source: SourceFallback}, nil
}

func (r *Resolver) fetch(
	ctx context.Context,
	from, to currency.Code,
) (*exchange.RateInfo, error) {
	info, err := r.exchange.FetchRate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: empty quote", exchange.ErrInvalidRate)
	}
	if err := exchange.ValidateRate(info.Rate); err != nil {
		return nil, err
	}
	return info, nil
}

var _ RateResolver = (*Resolver)(nil)
