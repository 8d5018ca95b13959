package commands

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/cmd/creditpv/internal/tradefile"
)

// basketCmd represents the basket command
var basketCmd = &cobra.Command{
	Use:   "basket",
	Short: "Value index and nth-to-default trades with expected loss",
	Long: `Prices the index and ntd trades of the file and adds the expected
loss from settle to maturity to each line.

Example:
  creditpv basket --trades trades.yaml`,
	RunE: runBasket,
}

func init() {
	rootCmd.AddCommand(basketCmd)
}

func runBasket(cmd *cobra.Command, args []string) error {
	return priceTrades(cmd, trades.Select(tradefile.TypeIndex, tradefile.TypeNTD), true)
}
