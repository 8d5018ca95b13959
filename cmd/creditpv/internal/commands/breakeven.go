package commands

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/cmd/creditpv/internal/tradefile"
)

// breakevenCmd represents the breakeven command
var breakevenCmd = &cobra.Command{
	Use:   "breakeven",
	Short: "Break-even premium and upfront fee of single-name trades",
	Long: `For every cds and cln trade, reports the running premium that sets the
trade value to zero and the upfront fee at the contractual coupon.

Example:
  creditpv breakeven --trades trades.yaml`,
	RunE: runBreakeven,
}

func init() {
	rootCmd.AddCommand(breakevenCmd)
}

// BreakevenOutput is one line of `creditpv breakeven`.
type BreakevenOutput struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	BreakEvenPremium  decimal.Decimal `json:"break_even_premium"`
	BreakEvenSpreadBP decimal.Decimal `json:"break_even_spread_bp"`
	BreakEvenFee      decimal.Decimal `json:"break_even_fee"`
}

func runBreakeven(cmd *cobra.Command, args []string) error {
	return eachSingleName(cmd, func(t tradefile.Trade) (any, error) {
		p, err := market.SingleName(t)
		if err != nil {
			return nil, err
		}
		bep, err := p.BreakEvenPremium()
		if err != nil {
			return nil, err
		}
		fee, err := p.BreakEvenFee()
		if err != nil {
			return nil, err
		}
		return BreakevenOutput{
			ID:                t.ID,
			Type:              t.Type,
			BreakEvenPremium:  rate(bep),
			BreakEvenSpreadBP: decimal.NewFromFloat(bep * 1e4).Round(4),
			BreakEvenFee:      rate(fee),
		}, nil
	})
}

// eachSingleName runs fn on every cds and cln trade, logging and reporting
// failures without stopping.
func eachSingleName(cmd *cobra.Command, fn func(t tradefile.Trade) (any, error)) error {
	out := cmd.OutOrStdout()
	ts := trades.Select(tradefile.TypeCDS, tradefile.TypeCLN)
	failed := 0
	for _, t := range ts {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		row, err := fn(t)
		if err != nil {
			failed++
			log.WithField("trade", t.ID).WithError(err).Warn("trade skipped")
			row = ErrorOutput{ID: t.ID, Type: t.Type, Error: err.Error()}
		}
		if err := writeLine(out, row); err != nil {
			return err
		}
	}
	if failed > 0 {
		log.Warnf("%d of %d trades failed", failed, len(ts))
	}
	return nil
}
