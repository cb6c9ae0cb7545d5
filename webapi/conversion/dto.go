package conversion

import (
	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
)

// CreateSessionRequest is the optional body of POST /api/sessions. Omitted
// fields take the session defaults (1, USD, EUR).
type CreateSessionRequest struct {
	Amount *string `json:"amount,omitempty" validate:"omitempty,max=64"`
	From   string  `json:"from,omitempty" validate:"omitempty,len=3,alpha"`
	To     string  `json:"to,omitempty" validate:"omitempty,len=3,alpha"`
}

// SetAmountRequest replaces the raw amount text. An empty string is allowed
// and clears the input.
type SetAmountRequest struct {
	Amount *string `json:"amount" validate:"required,max=64"`
}

// SetCurrenciesRequest changes one or both sides of the pair. At least one
// side must be given.
type SetCurrenciesRequest struct {
	From string `json:"from,omitempty" validate:"omitempty,len=3,alpha"`
	To   string `json:"to,omitempty" validate:"omitempty,len=3,alpha"`
}

// SessionView is what every session endpoint returns.
type SessionView struct {
	ID    string           `json:"id"`
	State conversion.State `json:"state"`
	// Symbol is the target currency's display symbol.
	Symbol string `json:"symbol"`
	// FormattedResult is the result with two fraction digits and grouping.
	FormattedResult string `json:"formatted_result,omitempty"`
	// DisplayResult prefixes FormattedResult with Symbol, e.g. "€ 90.00".
	DisplayResult string `json:"display_result,omitempty"`
	// RateLine reads "1 USD = 0.90 EUR".
	RateLine string `json:"rate_line,omitempty"`
	// Notices raised since the previous response for this session.
	Notices []notify.Notice `json:"notices"`
}

// ToView renders an entry, draining its pending notices.
func ToView(e *conversion.Entry) SessionView {
	st := e.Session.State()
	view := SessionView{
		ID:      e.ID.String(),
		State:   st,
		Symbol:  currency.Symbol(st.To),
		Notices: e.Notices.Drain(),
	}
	if st.Result != nil && st.Rate != nil {
		view.FormattedResult = currency.DisplayAmount(*st.Result)
		view.DisplayResult = currency.DisplayMoney(st.To, *st.Result)
		view.RateLine = currency.DisplayRate(st.From, st.To, *st.Rate)
	}
	return view
}
