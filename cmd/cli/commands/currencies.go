package commands

import (
	"text/tabwriter"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/spf13/cobra"
)

func currenciesCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List the supported currencies and their offline rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			env.out.w = tw
			env.out.Line("CODE\tSYMBOL\tNAME\tOFFLINE RATE (USD=1)")
			for _, c := range currency.All() {
				env.out.Line("%s\t%s\t%s\t%s", c.Code, c.Symbol, c.Name,
					currency.FormatAmount(currency.FallbackRate(currency.USD, c.Code)))
			}
			return tw.Flush()
		},
	}
}
