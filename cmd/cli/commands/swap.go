package commands

import (
	"github.com/spf13/cobra"
)

// swap AMOUNT FROM TO: convert, swap the pair and convert again, printing
// each step.
func swapCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "swap AMOUNT FROM TO",
		Short: "Convert, then swap the currencies and convert back",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, rec, err := env.newSession(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			st, err := s.Convert(ctx)
			env.out.Notices(rec.Drain())
			if err != nil {
				return err
			}
			env.out.State(st)

			st, err = s.Swap(ctx)
			if err != nil {
				return err
			}
			env.out.Line("")
			env.out.Line("Swapped to %s -> %s", st.From, st.To)
			env.out.State(st)

			st, err = s.Convert(ctx)
			env.out.Notices(rec.Drain())
			if err != nil {
				return err
			}
			env.out.Line("")
			env.out.State(st)
			return nil
		},
	}
}
