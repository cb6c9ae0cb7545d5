package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/amirasaad/fxconverter/pkg/app"
	"github.com/amirasaad/fxconverter/pkg/config"
	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableExchange map[string]float64

func (t tableExchange) FetchRate(_ context.Context, from, to currency.Code) (*exchange.RateInfo, error) {
	rate, ok := t[from.String()+":"+to.String()]
	if !ok {
		return nil, exchange.ErrRateUnavailable
	}
	return &exchange.RateInfo{FromCurrency: from, ToCurrency: to, Rate: rate, Provider: "table"}, nil
}

func (t tableExchange) Metadata() exchange.ProviderMetadata {
	return exchange.ProviderMetadata{Name: "table"}
}

func run(t *testing.T, ex exchange.Exchange, stdin string, args ...string) (string, error) {
	t.Helper()
	build := func(_ context.Context, flags Flags, _ io.Writer) (*app.App, error) {
		deps := &app.Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
		if ex != nil && !flags.Offline {
			deps.Exchange = ex
		}
		return app.New(deps, &config.App{Env: "test"}), nil
	}
	root := NewRootCmd(build)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

var rates = tableExchange{"USD:EUR": 0.9, "EUR:USD": 1.25}

func TestConvert_Live(t *testing.T) {
	out, err := run(t, rates, "", "convert", "100", "usd", "EUR")

	require.NoError(t, err)
	assert.Contains(t, out, "€ 90.00")
	assert.Contains(t, out, "1 USD = 0.90 EUR")
	assert.Contains(t, out, "live rate")
	assert.NotContains(t, out, "\x1b[", "no color codes when not a terminal")
}

func TestConvert_FallbackNotice(t *testing.T) {
	out, err := run(t, rates, "", "convert", "10", "USD", "JPY")

	require.NoError(t, err)
	assert.Contains(t, out, "! Using Offline Rates: Live rates unavailable, using fallback data")
	assert.Contains(t, out, "¥ 1,101.20")
	assert.Contains(t, out, "offline rate")
}

func TestConvert_OfflineFlag(t *testing.T) {
	out, err := run(t, rates, "", "--offline", "convert", "100", "USD", "EUR")

	require.NoError(t, err)
	assert.Contains(t, out, "€ 85.00")
	assert.Contains(t, out, "Using Offline Rates")
}

func TestConvert_InvalidAmount(t *testing.T) {
	out, err := run(t, rates, "", "convert", "abc", "USD", "EUR")

	require.ErrorIs(t, err, conversion.ErrInvalidAmount)
	assert.Contains(t, out, "! Invalid Amount: Please enter a valid positive number")
}

func TestConvert_UnsupportedCurrency(t *testing.T) {
	_, err := run(t, rates, "", "convert", "1", "USD", "XYZ")
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
}

func TestConvert_Args(t *testing.T) {
	_, err := run(t, rates, "", "convert", "1", "USD")
	require.Error(t, err)
}

func TestSwap_ShowsEachStep(t *testing.T) {
	out, err := run(t, rates, "", "swap", "100", "USD", "EUR")

	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "€ 90.00", lines[0])
	assert.Contains(t, out, "Swapped to EUR -> USD")
	assert.Contains(t, out, "$ 111.11", "reciprocal of 0.9 applied at once")
	assert.Contains(t, out, "reciprocal of previous rate")
	assert.Contains(t, out, "$ 125.00", "then the resolved EUR->USD rate")
}

func TestCurrencies(t *testing.T) {
	out, err := run(t, nil, "", "currencies")

	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	for _, c := range currency.All() {
		assert.Contains(t, out, c.Name)
	}
	assert.Contains(t, out, "110.12")
}

func TestInteractive(t *testing.T) {
	script := strings.Join([]string{
		"100",
		"to JPY",
		"to XYZ",
		"amount -1",
		"convert",
		"amount 2",
		"from EUR",
		"swap",
		"bogus",
		"quit",
		"100", // never read
	}, "\n")

	out, err := run(t, rates, script, "interactive")

	require.NoError(t, err)
	assert.Contains(t, out, "€ 0.90", "initial conversion of the defaults")
	assert.Contains(t, out, "€ 90.00")
	assert.Contains(t, out, "Using Offline Rates", "USD->JPY is not in the live table")
	assert.Contains(t, out, "unknown currency \"XYZ\"")
	assert.Contains(t, out, "Invalid Amount")
	assert.Contains(t, out, "1 EUR = 129.55 JPY", "fallback cross rate")
	assert.Contains(t, out, "unknown command \"bogus\"")
	assert.NotContains(t, out, "> ", "no prompt when stdin is not a terminal")
}

func TestInteractive_EOF(t *testing.T) {
	out, err := run(t, rates, "help\n", "interactive")

	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
}

func TestBuildApp_Error(t *testing.T) {
	boom := errors.New("boom")
	root := NewRootCmd(func(context.Context, Flags, io.Writer) (*app.App, error) { return nil, boom })
	root.SetOut(io.Discard)
	root.SetArgs([]string{"currencies"})

	require.ErrorIs(t, root.Execute(), boom)
}
