package commands

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const interactiveHelp = `Commands:
  <amount>        set the amount and convert
  amount <text>   set the amount without converting
  from <CODE>     change the source currency
  to <CODE>       change the target currency
  swap            swap the currencies
  convert         convert the current amount
  show            print the current result
  currencies      list supported currencies
  help            show this help
  quit            exit`

// interactive: a line-oriented converter that behaves like the widget:
// changing a currency or swapping re-converts automatically.
func interactiveCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"repl"},
		Short:   "Start an interactive converter session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := notify.NewRecorder()
			r := &repl{
				env:     env,
				session: env.app.NewSession(rec),
				notices: rec,
				prompt:  isTerminalReader(cmd.InOrStdin()),
			}
			return r.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type repl struct {
	env     *cliEnv
	session *conversion.Session
	notices *notify.Recorder
	prompt  bool
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	out := r.env.out
	out.Line("fxconvert interactive. Type 'help' for commands.")
	r.show(r.session.Convert(ctx))

	scanner := bufio.NewScanner(in)
	for {
		if r.prompt {
			_, _ = io.WriteString(out.w, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := r.exec(ctx, strings.Fields(scanner.Text())); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, fields []string) bool {
	out := r.env.out
	if len(fields) == 0 {
		return false
	}
	cmd, arg := strings.ToLower(fields[0]), strings.Join(fields[1:], " ")

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		out.Line(interactiveHelp)
	case "show":
		r.show(r.session.State(), nil)
	case "currencies":
		codes := make([]string, 0, len(currency.All()))
		for _, c := range currency.All() {
			codes = append(codes, c.Code.String())
		}
		out.Line(strings.Join(codes, " "))
	case "amount":
		r.show(r.session.SetAmount(arg), nil)
	case "convert":
		r.show(r.session.Convert(ctx))
	case "swap":
		r.show(r.session.Swap(ctx))
	case "from", "to":
		code, err := currency.Parse(arg)
		if err != nil {
			out.Line("unknown currency %q; try 'currencies'", arg)
			return false
		}
		if cmd == "from" {
			r.show(r.session.SetFrom(ctx, code))
		} else {
			r.show(r.session.SetTo(ctx, code))
		}
	default:
		if _, err := conversion.ParseAmount(fields[0]); err == nil && len(fields) == 1 {
			r.session.SetAmount(fields[0])
			r.show(r.session.Convert(ctx))
			return false
		}
		out.Line("unknown command %q; type 'help'", fields[0])
	}
	return false
}

func (r *repl) show(st conversion.State, err error) {
	r.env.out.Notices(r.notices.Drain())
	if err != nil && !errors.Is(err, conversion.ErrInvalidAmount) {
		r.env.out.Line("error: %v", err)
	}
	r.env.out.State(st)
}

func isTerminalReader(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
