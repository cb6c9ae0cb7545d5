package commands

import (
	"fmt"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
	"github.com/spf13/cobra"
)

// convert AMOUNT FROM TO: one conversion, printed with its rate.
func convertCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "convert AMOUNT FROM TO",
		Short:   "Convert an amount from one currency to another",
		Example: "  fxconvert convert 100 USD EUR\n  fxconvert --offline convert 10 usd jpy",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, rec, err := env.newSession(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			st, err := s.Convert(cmd.Context())
			env.out.Notices(rec.Drain())
			if err != nil {
				return err
			}
			env.out.State(st)
			return nil
		},
	}
}

// newSession builds a session that only converts when asked.
func (e *cliEnv) newSession(
	amount, from, to string,
) (*conversion.Session, *notify.Recorder, error) {
	fromCode, err := currency.Parse(from)
	if err != nil {
		return nil, nil, fmt.Errorf("from: %w", err)
	}
	toCode, err := currency.Parse(to)
	if err != nil {
		return nil, nil, fmt.Errorf("to: %w", err)
	}
	rec := notify.NewRecorder()
	s := e.app.NewSession(rec,
		conversion.WithAmount(amount),
		conversion.WithPair(fromCode, toCode),
		conversion.WithAutoConvert(false),
	)
	return s, rec, nil
}
