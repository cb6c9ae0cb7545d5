// Package testutils provides an exchangerate.host stand-in and request
// helpers for HTTP tests.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/fxconverter/infra/provider/exchangeratehost"
	"github.com/amirasaad/fxconverter/pkg/app"
	"github.com/amirasaad/fxconverter/pkg/config"
	"github.com/amirasaad/fxconverter/webapi"
	"github.com/gofiber/fiber/v2"
)

// FakeRates answers /latest from a fixed table keyed "FROM:TO".
type FakeRates struct {
	Server *httptest.Server
	hits   atomic.Int32

	mu      sync.Mutex
	rates   map[string]float64
	failing bool
	gate    chan struct{}
}

// NewFakeRates starts the stand-in; it is closed when the test ends.
func NewFakeRates(tb testing.TB, rates map[string]float64) *FakeRates {
	tb.Helper()
	f := &FakeRates{rates: rates}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	tb.Cleanup(f.Server.Close)
	return f
}

func (f *FakeRates) serve(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.mu.Lock()
	failing, gate := f.failing, f.gate
	rate, ok := f.rates[r.URL.Query().Get("base")+":"+r.URL.Query().Get("symbols")]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if failing {
		http.Error(w, "upstream down", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_, _ = w.Write([]byte(`{"success":false}`))
		return
	}
	_, _ = fmt.Fprintf(w, `{"success":true,"base":%q,"rates":{%q:%v}}`,
		r.URL.Query().Get("base"), r.URL.Query().Get("symbols"), rate)
}

// Hits is the number of requests received.
func (f *FakeRates) Hits() int32 { return f.hits.Load() }

// SetFailing makes every request answer 502.
func (f *FakeRates) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

// Hold makes requests block until the returned release func is called.
func (f *FakeRates) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// TestConfig is a config with rate limiting effectively off.
func TestConfig() *config.App {
	return &config.App{
		Env:       "test",
		Server:    &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:       &config.Log{Format: "text"},
		RateLimit: &config.RateLimit{MaxRequests: 10000, Window: time.Minute},
		ExchangeRateApi: &config.ExchangeRateApi{
			ApiKey:      "test-key",
			HTTPTimeout: 5 * time.Second,
		},
		ExchangeRateCache: &config.ExchangeRateCache{Prefix: "fx:rate:"},
		Redis:             &config.Redis{},
		Session:           &config.Session{},
	}
}

// NewTestApp builds the fiber app against fake. A nil cfg uses TestConfig.
func NewTestApp(fake *FakeRates, cfg *config.App) *fiber.App {
	if cfg == nil {
		cfg = TestConfig()
	}
	cfg.ExchangeRateApi.ApiUrl = fake.Server.URL
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := &app.Deps{
		Exchange: exchangeratehost.New(cfg.ExchangeRateApi, logger),
		Logger:   logger,
	}
	return webapi.SetupApp(app.New(deps, cfg))
}

// MakeRequestWithApp is a helper for making HTTP requests with a standalone app
func MakeRequestWithApp(app *fiber.App, method, path, body string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err) // For standalone tests, panic on error
	}
	return resp
}

// Envelope mirrors common.Response with typed data.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// DecodeData reads a success envelope and returns its data.
func DecodeData[T any](tb testing.TB, resp *http.Response) T {
	tb.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var env Envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		tb.Fatalf("decode response: %v", err)
	}
	return env.Data
}

// Problem mirrors common.ProblemDetails with raw errors.
type Problem struct {
	Title  string          `json:"title"`
	Status int             `json:"status"`
	Detail string          `json:"detail"`
	Errors json.RawMessage `json:"errors"`
}

// DecodeProblem reads a problem details body.
func DecodeProblem(tb testing.TB, resp *http.Response) Problem {
	tb.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var p Problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		tb.Fatalf("decode problem: %v", err)
	}
	return p
}
