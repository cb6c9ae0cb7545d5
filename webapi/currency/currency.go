package currency

import (
	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// CurrencyResponse represents the response structure for currency data
type CurrencyResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	// FallbackRate is the offline rate relative to USD.
	FallbackRate float64 `json:"fallback_rate"`
}

// ToResponse converts a catalog entry to a response DTO
func ToResponse(c currency.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:         c.Code.String(),
		Name:         c.Name,
		Symbol:       c.Symbol,
		FallbackRate: currency.FallbackRate(currency.USD, c.Code),
	}
}

// Routes registers the read-only currency catalog endpoints.
func Routes(app *fiber.App) {
	currencyGroup := app.Group("/api/currencies")
	currencyGroup.Get("/", ListCurrencies())
	currencyGroup.Get("/:code", GetCurrency())
}

// ListCurrencies returns a Fiber handler listing the supported currencies in
// display order.
func ListCurrencies() fiber.Handler {
	return func(c *fiber.Ctx) error {
		all := currency.All()
		out := make([]CurrencyResponse, 0, len(all))
		for _, cur := range all {
			out = append(out, ToResponse(cur))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched successfully", out)
	}
}

// GetCurrency returns currency information by code
func GetCurrency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := currency.Parse(c.Params("code"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Currency not found", err, fiber.StatusNotFound)
		}
		cur, _ := currency.Lookup(code)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched successfully", ToResponse(cur))
	}
}
