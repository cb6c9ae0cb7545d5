package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
)

var (
	// ErrInvalidAmount is returned when the amount is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSuperseded is returned by a conversion whose result was discarded
	// because a newer one was issued while it was in flight.
	ErrSuperseded = errors.New("conversion superseded by a newer request")

	// ErrPending is returned by ConvertIfIdle while a conversion is in flight.
	ErrPending = errors.New("conversion already in progress")
)

// InvalidAmountNotice is raised when a conversion is requested with an
// amount that is not a positive number.
var InvalidAmountNotice = notify.Notice{
	Title:    "Invalid Amount",
	Message:  "Please enter a valid positive number",
	Severity: notify.SeverityDestructive,
}

// Session defaults
const (
	DefaultAmount = "1"
	DefaultFrom   = currency.USD
	DefaultTo     = currency.EUR
)

// State is a snapshot of a session.
type State struct {
	// Amount is the raw text the user typed.
	Amount string        `json:"amount"`
	From   currency.Code `json:"from"`
	To     currency.Code `json:"to"`
	// BaseAmount is the parsed amount Result was computed from.
	BaseAmount    *float64   `json:"base_amount,omitempty"`
	Rate          *float64   `json:"rate,omitempty"`
	Result        *float64   `json:"result,omitempty"`
	Source        RateSource `json:"source,omitempty"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
	Pending       bool       `json:"pending"`
}

// Option configures a Session.
type Option func(*Session)

// WithAmount sets the initial amount text.
func WithAmount(text string) Option {
	return func(s *Session) { s.state.Amount = text }
}

// WithPair sets the initial currency pair.
func WithPair(from, to currency.Code) Option {
	return func(s *Session) {
		s.state.From = from
		s.state.To = to
	}
}

// WithAutoConvert toggles re-conversion on currency changes. Enabled by default.
func WithAutoConvert(enabled bool) Option {
	return func(s *Session) { s.autoConvert = enabled }
}

// WithClock overrides the time source used for LastUpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session holds one converter's input and result. It is safe for concurrent
// use. Every resolution gets an issue number; a completed resolution is
// applied only if no newer one was issued in the meantime, and issuing a new
// one cancels the previous.
type Session struct {
	mu          sync.Mutex
	state       State
	resolver    RateResolver
	notifier    notify.Notifier
	logger      *slog.Logger
	now         func() time.Time
	autoConvert bool

	issued uint64
	cancel context.CancelFunc
	// ratePair is the pair Rate and Result were computed for.
	ratePair [2]currency.Code
}

// NewSession creates a session with amount "1" and USD -> EUR unless
// overridden by opts.
func NewSession(
	resolver RateResolver,
	notifier notify.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Session {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		state: State{
			Amount: DefaultAmount,
			From:   DefaultFrom,
			To:     DefaultTo,
		},
		resolver:    resolver,
		notifier:    notifier,
		logger:      logger.With("component", "conversion_session"),
		now:         time.Now,
		autoConvert: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetAmount stores the raw amount text. It is validated on conversion.
func (s *Session) SetAmount(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Amount = text
	return s.state
}

// SetFrom changes the base currency and re-converts if it changed.
func (s *Session) SetFrom(ctx context.Context, code currency.Code) (State, error) {
	if code == "" {
		return s.State(), fmt.Errorf("%w: empty code", currency.ErrUnsupportedCurrency)
	}
	return s.SetPair(ctx, code, "")
}

// SetTo changes the quote currency and re-converts if it changed.
func (s *Session) SetTo(ctx context.Context, code currency.Code) (State, error) {
	if code == "" {
		return s.State(), fmt.Errorf("%w: empty code", currency.ErrUnsupportedCurrency)
	}
	return s.SetPair(ctx, "", code)
}

// SetPair changes both currencies at once, re-converting at most once. An
// empty code keeps that side as it is at the time of the change.
func (s *Session) SetPair(
	ctx context.Context,
	from, to currency.Code,
) (State, error) {
	for _, code := range []currency.Code{from, to} {
		if code != "" && !currency.IsSupported(code) {
			return s.State(), fmt.Errorf("%w: %q", currency.ErrUnsupportedCurrency, code)
		}
	}

	s.mu.Lock()
	if from == "" {
		from = s.state.From
	}
	if to == "" {
		to = s.state.To
	}
	if s.state.From == from && s.state.To == to {
		st := s.state
		s.mu.Unlock()
		return st, nil
	}
	s.state.From = from
	s.state.To = to
	s.supersedeLocked()
	s.resetResultLocked()
	s.mu.Unlock()

	return s.reconvert(ctx)
}

// Swap exchanges the currencies. When a rate and result for the pair are on
// display they are replaced at once by the reciprocal rate and
// amount * (1/rate); the automatic re-conversion that follows replaces that
// approximation with a resolved rate. A result left over from another pair is
// dropped instead.
func (s *Session) Swap(ctx context.Context) (State, error) {
	s.mu.Lock()
	st := &s.state
	if st.From == st.To {
		out := *st
		s.mu.Unlock()
		return out, nil
	}
	st.From, st.To = st.To, st.From
	if st.Rate != nil && st.Result != nil && *st.Rate != 0 && *st.Result != 0 &&
		s.ratePair == [2]currency.Code{st.To, st.From} {
		inverse := 1 / *st.Rate
		st.Rate = &inverse
		st.Source = SourceInverse
		s.ratePair = [2]currency.Code{st.From, st.To}
		if amount, err := ParseAmount(st.Amount); err == nil {
			result := amount * inverse
			st.BaseAmount = &amount
			st.Result = &result
		} else {
			st.BaseAmount = nil
			st.Result = nil
		}
	} else {
		s.resetResultLocked()
	}
	s.supersedeLocked()
	s.mu.Unlock()

	return s.reconvert(ctx)
}

// Convert parses the amount and computes the result for the current pair.
func (s *Session) Convert(ctx context.Context) (State, error) {
	return s.convert(ctx, false)
}

// ConvertIfIdle is Convert for user-triggered conversions: it refuses to
// start while another conversion is pending.
func (s *Session) ConvertIfIdle(ctx context.Context) (State, error) {
	return s.convert(ctx, true)
}

func (s *Session) reconvert(ctx context.Context) (State, error) {
	s.mu.Lock()
	if !s.autoConvert || strings.TrimSpace(s.state.Amount) == "" {
		st := s.state
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()
	return s.convert(ctx, false)
}

func (s *Session) convert(ctx context.Context, requireIdle bool) (State, error) {
	s.mu.Lock()
	if requireIdle && s.state.Pending {
		st := s.state
		s.mu.Unlock()
		return st, ErrPending
	}

	amount, err := ParseAmount(s.state.Amount)
	if err != nil {
		st := s.state
		s.mu.Unlock()
		s.logger.Debug("Rejected amount", "amount", st.Amount)
		s.notifier.Notify(ctx, InvalidAmountNotice)
		return st, err
	}

	from, to := s.state.From, s.state.To
	if from == to {
		s.supersedeLocked()
		s.applyLocked(amount, 1, SourceIdentity)
		st := s.state
		s.mu.Unlock()
		return st, nil
	}

	seq, rctx := s.issueLocked(ctx)
	s.mu.Unlock()

	outcome, err := s.resolver.Resolve(rctx, from, to)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued {
		s.logger.Debug("Discarding stale conversion",
			"issue", seq, "latest", s.issued, "from", from, "to", to)
		return s.state, ErrSuperseded
	}
	s.finishLocked()
	if err != nil {
		return s.state, fmt.Errorf("resolve %s->%s: %w", from, to, err)
	}
	s.applyLocked(amount, outcome.Rate, outcome.Source)
	return s.state, nil
}

// issueLocked starts a new resolution, cancelling the one in flight.
func (s *Session) issueLocked(ctx context.Context) (uint64, context.Context) {
	s.supersedeLocked()
	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Pending = true
	return s.issued, rctx
}

// supersedeLocked invalidates any resolution in flight.
func (s *Session) supersedeLocked() {
	s.issued++
	s.finishLocked()
}

func (s *Session) finishLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state.Pending = false
}

func (s *Session) applyLocked(amount, rate float64, source RateSource) {
	result := amount * rate
	now := s.now()
	s.state.BaseAmount = &amount
	s.state.Rate = &rate
	s.state.Result = &result
	s.state.Source = source
	s.state.LastUpdatedAt = &now
	s.ratePair = [2]currency.Code{s.state.From, s.state.To}
}

// resetResultLocked drops a result computed for another pair. A pair of one
// currency shows its identity rate at once.
func (s *Session) resetResultLocked() {
	if s.ratePair == [2]currency.Code{s.state.From, s.state.To} {
		return
	}
	s.state.BaseAmount = nil
	s.state.Rate = nil
	s.state.Result = nil
	s.state.Source = ""
	s.ratePair = [2]currency.Code{}
	if s.state.From == s.state.To {
		one := 1.0
		s.state.Rate = &one
		s.state.Source = SourceIdentity
		s.ratePair = [2]currency.Code{s.state.From, s.state.To}
	}
}

// Close cancels any resolution in flight; its result is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
}

// ParseAmount parses user input as a positive, finite number.
func ParseAmount(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return v, nil
}
