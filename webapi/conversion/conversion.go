// Package conversion exposes converter sessions over HTTP. Each session is
// one independent converter: its own amount, pair, result and notices.
package conversion

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
	"github.com/amirasaad/fxconverter/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers HTTP routes for converter sessions.
func Routes(app *fiber.App, store *conversion.Store, logger *slog.Logger) {
	h := &handlers{store: store, logger: logger.With("handler", "conversion")}

	sessions := app.Group("/api/sessions")
	sessions.Post("/", h.CreateSession)
	sessions.Get("/:id", h.GetSession)
	sessions.Put("/:id/amount", h.SetAmount)
	sessions.Put("/:id/currencies", h.SetCurrencies)
	sessions.Post("/:id/convert", h.Convert)
	sessions.Post("/:id/swap", h.Swap)
	sessions.Delete("/:id", h.DeleteSession)
}

type handlers struct {
	store  *conversion.Store
	logger *slog.Logger
}

// CreateSession starts a session and runs its first conversion, the same
// way the converter converts its defaults when it first appears.
func (h *handlers) CreateSession(c *fiber.Ctx) error {
	input, fields, err := common.BindAndValidate[CreateSessionRequest](c)
	if err != nil {
		return badRequest(c, err, fields)
	}

	var opts []conversion.Option
	if input.Amount != nil {
		opts = append(opts, conversion.WithAmount(*input.Amount))
	}
	from, to := conversion.DefaultFrom, conversion.DefaultTo
	if input.From != "" {
		if from, err = currency.Parse(input.From); err != nil {
			return common.ProblemDetailsJSON(c, "Unsupported currency", err)
		}
	}
	if input.To != "" {
		if to, err = currency.Parse(input.To); err != nil {
			return common.ProblemDetailsJSON(c, "Unsupported currency", err)
		}
	}
	opts = append(opts, conversion.WithPair(from, to))

	entry := h.store.Create(opts...)
	h.logger.Info("Session created", "session_id", entry.ID, "from", from, "to", to)

	if entry.Session.State().Amount != "" {
		if _, err := entry.Session.Convert(c.UserContext()); err != nil && !isSoftError(err) {
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}
	}
	return common.SuccessResponseJSON(c, fiber.StatusCreated, "Session created", ToView(entry))
}

// GetSession returns the session's current state.
func (h *handlers) GetSession(c *fiber.Ctx) error {
	entry, err := h.entry(c)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Session not found", err)
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Session fetched", ToView(entry))
}

// SetAmount stores the amount text without converting.
func (h *handlers) SetAmount(c *fiber.Ctx) error {
	entry, err := h.entry(c)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Session not found", err)
	}
	input, fields, err := common.BindAndValidate[SetAmountRequest](c)
	if err != nil {
		return badRequest(c, err, fields)
	}
	entry.Session.SetAmount(*input.Amount)
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Amount updated", ToView(entry))
}

// SetCurrencies changes the pair and re-converts when it changed.
func (h *handlers) SetCurrencies(c *fiber.Ctx) error {
	entry, err := h.entry(c)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Session not found", err)
	}
	input, fields, err := common.BindAndValidate[SetCurrenciesRequest](c)
	if err != nil {
		return badRequest(c, err, fields)
	}
	if input.From == "" && input.To == "" {
		return common.ProblemDetailsJSON(c, "Validation failed", nil, "from or to is required")
	}

	// an empty side is kept as the session has it when the change applies
	var from, to currency.Code
	if input.From != "" {
		if from, err = currency.Parse(input.From); err != nil {
			return common.ProblemDetailsJSON(c, "Unsupported currency", err)
		}
	}
	if input.To != "" {
		if to, err = currency.Parse(input.To); err != nil {
			return common.ProblemDetailsJSON(c, "Unsupported currency", err)
		}
	}

	if _, err := entry.Session.SetPair(c.UserContext(), from, to); err != nil && !isSoftError(err) {
		return common.ProblemDetailsJSON(c, "Failed to change currencies", err)
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies updated", ToView(entry))
}

// Convert runs a conversion unless one is already pending.
func (h *handlers) Convert(c *fiber.Ctx) error {
	entry, err := h.entry(c)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Session not found", err)
	}
	if _, err := entry.Session.ConvertIfIdle(c.UserContext()); err != nil {
		switch {
		case errors.Is(err, conversion.ErrPending):
			return common.ProblemDetailsJSON(c, "Conversion in progress", err)
		case errors.Is(err, conversion.ErrInvalidAmount):
			return common.ProblemDetailsJSON(c, "Invalid amount", err, entry.Notices.Drain())
		case errors.Is(err, conversion.ErrSuperseded):
			// a newer request owns the result; report the current state
		default:
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Conversion completed", ToView(entry))
}

// Swap exchanges the currencies.
func (h *handlers) Swap(c *fiber.Ctx) error {
	entry, err := h.entry(c)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Session not found", err)
	}
	if _, err := entry.Session.Swap(c.UserContext()); err != nil && !isSoftError(err) {
		return common.ProblemDetailsJSON(c, "Swap failed", err)
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies swapped", ToView(entry))
}

// DeleteSession discards the session.
func (h *handlers) DeleteSession(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return common.ProblemDetailsJSON(c, "Invalid session ID", err, "Session ID must be a valid UUID", fiber.StatusBadRequest)
	}
	if err := h.store.Delete(id); err != nil {
		return common.ProblemDetailsJSON(c, "Session not found", err)
	}
	h.logger.Info("Session deleted", "session_id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) entry(c *fiber.Ctx) (*conversion.Entry, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, conversion.ErrSessionNotFound
	}
	return h.store.Get(id)
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// isSoftError reports errors from automatic re-conversions that leave the
// request itself successful: the notice is in the view, or a newer request
// owns the result.
func isSoftError(err error) bool {
	return errors.Is(err, conversion.ErrInvalidAmount) || errors.Is(err, conversion.ErrSuperseded)
}

func badRequest(c *fiber.Ctx, err error, fields []common.FieldError) error {
	if fields != nil {
		return common.ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest, fields)
	}
	return common.ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
}
