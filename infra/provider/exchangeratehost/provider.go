// Package exchangeratehost is the live quote source backed by the
// exchangerate.host "latest" endpoint.
package exchangeratehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/fxconverter/pkg/config"
	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
)

const providerName = "exchangerate.host"

// maxErrorBody caps how much of a failed response is kept for logging.
const maxErrorBody = 512

// LatestResponse is the subset of the "latest" payload we rely on.
// Example: {"success": true, "base": "USD", "date": "2024-05-01", "rates": {"EUR": 0.93}}
type LatestResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
}

// Provider fetches single-pair quotes.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Provider from config. A zero HTTPTimeout leaves the client
// on the transport default.
func New(cfg *config.ExchangeRateApi, logger *slog.Logger) *Provider {
	client := &http.Client{}
	if cfg.HTTPTimeout > 0 {
		client.Timeout = cfg.HTTPTimeout
	}
	return NewWithClient(cfg.ApiUrl, cfg.ApiKey, client, logger)
}

// NewWithClient creates a Provider with an explicit HTTP client.
func NewWithClient(
	baseURL, apiKey string,
	client *http.Client,
	logger *slog.Logger,
) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger.With("provider", providerName),
	}
}

// FetchRate implements exchange.Exchange. It issues exactly one GET.
func (p *Provider) FetchRate(
	ctx context.Context,
	from, to currency.Code,
) (*exchange.RateInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.latestURL(from, to), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", exchange.ErrRateUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	p.logger.Debug("Fetching exchange rate", "from", from, "to", to)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %w", exchange.ErrRateUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: API returned status %d: %s",
			exchange.ErrRateUnavailable, resp.StatusCode, string(body))
	}

	var apiResp LatestResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", exchange.ErrInvalidRate, err)
	}
	if !apiResp.Success {
		return nil, fmt.Errorf("%w: API returned success=false", exchange.ErrRateUnavailable)
	}

	rate, ok := apiResp.Rates[to.String()]
	if !ok {
		return nil, fmt.Errorf("%w: currency %s not found in response", exchange.ErrInvalidRate, to)
	}
	if err := exchange.ValidateRate(rate); err != nil {
		return nil, err
	}

	return &exchange.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		Timestamp:    time.Now(),
		Provider:     providerName,
	}, nil
}

// Metadata implements exchange.Exchange.
func (p *Provider) Metadata() exchange.ProviderMetadata {
	return exchange.ProviderMetadata{Name: providerName, Version: "latest"}
}

func (p *Provider) latestURL(from, to currency.Code) string {
	q := url.Values{}
	q.Set("base", from.String())
	q.Set("symbols", to.String())
	if p.apiKey != "" {
		q.Set("access_key", p.apiKey)
	}
	return p.baseURL + "/latest?" + q.Encode()
}

var _ exchange.Exchange = (*Provider)(nil)
