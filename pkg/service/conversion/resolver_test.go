package conversion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockExchange is a mock implementation of exchange.Exchange for testing
type MockExchange struct {
	mock.Mock
}

func (m *MockExchange) FetchRate(
	ctx context.Context,
	from, to currency.Code,
) (*exchange.RateInfo, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exchange.RateInfo), args.Error(1)
}

func (m *MockExchange) Metadata() exchange.ProviderMetadata {
	return exchange.ProviderMetadata{Name: "mock", Version: "v1"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveRate(from, to currency.Code, rate float64) *exchange.RateInfo {
	return &exchange.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		Timestamp:    time.Now(),
		Provider:     "mock",
	}
}

func TestResolver_Live(t *testing.T) {
	ex := new(MockExchange)
	ex.On("FetchRate", mock.Anything, currency.USD, currency.EUR).
		Return(liveRate(currency.USD, currency.EUR, 0.9), nil).Once()
	rec := notify.NewRecorder()

	out, err := NewResolver(ex, rec, discardLogger()).
		Resolve(context.Background(), currency.USD, currency.EUR)

	require.NoError(t, err)
	assert.InDelta(t, 0.9, out.Rate, 1e-12)
	assert.Equal(t, SourceLive, out.Source)
	assert.Equal(t, "mock", out.Provider)
	assert.Empty(t, rec.Notices())
	ex.AssertExpectations(t)
}

func TestResolver_SameCurrency(t *testing.T) {
	ex := new(MockExchange)
	rec := notify.NewRecorder()

	out, err := NewResolver(ex, rec, discardLogger()).
		Resolve(context.Background(), currency.EUR, currency.EUR)

	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Rate)
	assert.Equal(t, SourceIdentity, out.Source)
	assert.Empty(t, rec.Notices())
	ex.AssertNotCalled(t, "FetchRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_FallbackOnFailure(t *testing.T) {
	failures := map[string]func(*MockExchange){
		"transport error": func(ex *MockExchange) {
			ex.On("FetchRate", mock.Anything, currency.USD, currency.JPY).
				Return(nil, fmt.Errorf("%w: connection refused", exchange.ErrRateUnavailable))
		},
		"zero rate": func(ex *MockExchange) {
			ex.On("FetchRate", mock.Anything, currency.USD, currency.JPY).
				Return(liveRate(currency.USD, currency.JPY, 0), nil)
		},
		"negative rate": func(ex *MockExchange) {
			ex.On("FetchRate", mock.Anything, currency.USD, currency.JPY).
				Return(liveRate(currency.USD, currency.JPY, -3), nil)
		},
		"nil quote": func(ex *MockExchange) {
			ex.On("FetchRate", mock.Anything, currency.USD, currency.JPY).
				Return(nil, nil)
		},
	}
	for name, setup := range failures {
		t.Run(name, func(t *testing.T) {
			ex := new(MockExchange)
			setup(ex)
			rec := notify.NewRecorder()

			out, err := NewResolver(ex, rec, discardLogger()).
				Resolve(context.Background(), currency.USD, currency.JPY)

			require.NoError(t, err)
			assert.InDelta(t, 110.12, out.Rate, 1e-12)
			assert.Equal(t, SourceFallback, out.Source)
			require.Len(t, rec.Notices(), 1)
			assert.Equal(t, FallbackNotice.Title, rec.Notices()[0].Title)
			ex.AssertNumberOfCalls(t, "FetchRate", 1)
		})
	}
}

func TestResolver_FallbackMatchesTable(t *testing.T) {
	ex := new(MockExchange)
	ex.On("FetchRate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, exchange.ErrRateUnavailable)
	r := NewResolver(ex, nil, discardLogger())

	for _, a := range currency.All() {
		for _, b := range currency.All() {
			if a.Code == b.Code {
				continue
			}
			out, err := r.Resolve(context.Background(), a.Code, b.Code)
			require.NoError(t, err)
			assert.InDelta(t, currency.FallbackRate(a.Code, b.Code), out.Rate, 1e-12,
				"%s->%s", a.Code, b.Code)
		}
	}
}

func TestResolver_NoLiveSource(t *testing.T) {
	rec := notify.NewRecorder()
	out, err := NewResolver(nil, rec, discardLogger()).
		Resolve(context.Background(), currency.EUR, currency.GBP)

	require.NoError(t, err)
	assert.InDelta(t, 0.73/0.85, out.Rate, 1e-12)
	assert.Equal(t, SourceFallback, out.Source)
	assert.Len(t, rec.Notices(), 1)
}

func TestResolver_CancelledSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := new(MockExchange)
	ex.On("FetchRate", mock.Anything, currency.USD, currency.EUR).
		Return(nil, fmt.Errorf("%w: %w", exchange.ErrRateUnavailable, context.Canceled))
	rec := notify.NewRecorder()

	_, err := NewResolver(ex, rec, discardLogger()).Resolve(ctx, currency.USD, currency.EUR)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Notices())
}
