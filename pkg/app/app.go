package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/amirasaad/fxconverter/pkg/cache"
	"github.com/amirasaad/fxconverter/pkg/config"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
)

// Deps contains the dependencies shared by every conversion session
type Deps struct {
	// Exchange is the live quote source, possibly wrapped by a cache. A nil
	// Exchange makes every conversion use the fallback table.
	Exchange exchange.Exchange
	// RateCache is nil when quote caching is disabled.
	RateCache cache.RateCache
	Logger    *slog.Logger
	// Closers are released by App.Close in reverse order.
	Closers []io.Closer
}

type App struct {
	Deps   *Deps
	Config *config.App
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &App{
		Deps:   deps,
		Config: cfg,
	}
}

// NewResolver returns a resolver whose fallback notices go to n and to the
// application log.
func (a *App) NewResolver(n notify.Notifier) *conversion.Resolver {
	return conversion.NewResolver(a.Deps.Exchange, a.notifier(n), a.Deps.Logger)
}

// NewSession creates a converter session. Notices raised by it and by its
// resolver are delivered to n and logged.
func (a *App) NewSession(n notify.Notifier, opts ...conversion.Option) *conversion.Session {
	return conversion.NewSession(a.NewResolver(n), a.notifier(n), a.Deps.Logger, opts...)
}

func (a *App) notifier(n notify.Notifier) notify.Notifier {
	return notify.Multi{n, notify.NewLogNotifier(a.Deps.Logger)}
}

// AddCloser registers c to be released by Close, before anything already
// registered.
func (a *App) AddCloser(c io.Closer) {
	a.Deps.Closers = append(a.Deps.Closers, c)
}

// Close releases infrastructure held by Deps.
func (a *App) Close() error {
	var errs []error
	for i := len(a.Deps.Closers) - 1; i >= 0; i-- {
		if err := a.Deps.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
