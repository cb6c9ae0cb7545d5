package webapi_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	currencyweb "github.com/amirasaad/fxconverter/webapi/currency"
	"github.com/amirasaad/fxconverter/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestHealth(t *testing.T) {
	app := testutils.NewTestApp(testutils.NewFakeRates(t, nil), nil)

	resp := testutils.MakeRequestWithApp(app, fiber.MethodGet, "/", "")
	defer resp.Body.Close() //nolint:errcheck

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "running")
}

func TestCurrencies(t *testing.T) {
	app := testutils.NewTestApp(testutils.NewFakeRates(t, nil), nil)

	list := testutils.DecodeData[[]currencyweb.CurrencyResponse](t,
		testutils.MakeRequestWithApp(app, fiber.MethodGet, "/api/currencies", ""))
	require.Len(t, list, 10)
	assert.Equal(t, "USD", list[0].Code)
	assert.Equal(t, "BRL", list[9].Code)

	eur := testutils.DecodeData[currencyweb.CurrencyResponse](t,
		testutils.MakeRequestWithApp(app, fiber.MethodGet, "/api/currencies/eur", ""))
	assert.Equal(t, "EUR", eur.Code)
	assert.Equal(t, "Euro", eur.Name)
	assert.Equal(t, "€", eur.Symbol)
	assert.InDelta(t, 0.85, eur.FallbackRate, 1e-12)

	resp := testutils.MakeRequestWithApp(app, fiber.MethodGet, "/api/currencies/XYZ", "")
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

type RateLimitTestSuite struct {
	suite.Suite
	app *fiber.App
}

func (s *RateLimitTestSuite) SetupTest() {
	cfg := testutils.TestConfig()
	cfg.RateLimit.MaxRequests = 5
	cfg.RateLimit.Window = time.Second
	s.app = testutils.NewTestApp(testutils.NewFakeRates(s.T(), nil), cfg)
}

func (s *RateLimitTestSuite) TestRateLimit() {
	// Send requests until rate limit is hit
	for i := range 6 {
		resp := testutils.MakeRequestWithApp(s.app, fiber.MethodGet, "/", "")
		_ = resp.Body.Close()

		if i < 5 {
			s.Equal(fiber.StatusOK, resp.StatusCode, "Expected OK for request %d", i+1)
		} else {
			s.Equal(fiber.StatusTooManyRequests, resp.StatusCode, "Expected Too Many Requests for request %d", i+1)
		}
	}

	// Wait for the rate limit window to reset
	time.Sleep(1100 * time.Millisecond)

	resp := testutils.MakeRequestWithApp(s.app, fiber.MethodGet, "/", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode, "Expected OK after rate limit reset")
}

func (s *RateLimitTestSuite) TestForwardedClientsAreCountedSeparately() {
	get := func(forwardedFor string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		resp, err := s.app.Test(req, -1)
		s.Require().NoError(err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	for i := range 5 {
		s.Equal(fiber.StatusOK, get("10.0.0.1, 172.16.0.1"), "request %d", i+1)
	}
	s.Equal(fiber.StatusTooManyRequests, get("10.0.0.1"))
	s.Equal(fiber.StatusOK, get("10.0.0.2"))
}

func TestRateLimitTestSuite(t *testing.T) {
	suite.Run(t, new(RateLimitTestSuite))
}
