package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/cmd/creditpv/internal/tradefile"
	"github.com/meenmo/credlib/pricing"
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Value every trade in the file",
	Long: `Prices every trade and writes one JSON line per trade.

Trades that fail validation or pricing are logged, reported with an error
line and skipped; the remaining trades are still valued.

Example:
  creditpv price --trades trades.yaml`,
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)
}

type valuer interface {
	Price() (pricing.Result, error)
}

// valuerFor builds the pricer matching the trade type.
func valuerFor(t tradefile.Trade) (valuer, error) {
	switch t.Type {
	case tradefile.TypeCDS, tradefile.TypeCLN:
		return market.SingleName(t)
	case tradefile.TypeIndex:
		return market.Index(t)
	case tradefile.TypeNTD:
		return market.NTD(t)
	}
	return nil, fmt.Errorf("unknown trade type %q", t.Type)
}

func runPrice(cmd *cobra.Command, args []string) error {
	return priceTrades(cmd, trades.Trades, false)
}

// priceTrades values ts, continuing past failures. With withLoss the expected
// loss from settle to maturity is added to every line.
func priceTrades(cmd *cobra.Command, ts []tradefile.Trade, withLoss bool) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, t := range ts {
		row, err := priceTrade(t, withLoss)
		if err != nil {
			failed++
			log.WithField("trade", t.ID).WithError(err).Warn("trade skipped")
			if werr := writeLine(out, ErrorOutput{ID: t.ID, Type: t.Type, Error: err.Error()}); werr != nil {
				return werr
			}
			continue
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

type lossMeasurer interface {
	ExpectedLoss(start, end time.Time) (float64, error)
}

func priceTrade(t tradefile.Trade, withLoss bool) (PriceOutput, error) {
	v, err := valuerFor(t)
	if err != nil {
		return PriceOutput{}, err
	}
	r, err := v.Price()
	if err != nil {
		return PriceOutput{}, err
	}
	row := priceOutput(t.ID, t.Type, r)
	if withLoss {
		lm, ok := v.(lossMeasurer)
		if !ok {
			return row, nil
		}
		terms, err := market.Terms(t)
		if err != nil {
			return PriceOutput{}, err
		}
		_, maturity := terms.Dates()
		el, err := lm.ExpectedLoss(market.Settle, maturity)
		if err != nil {
			return PriceOutput{}, err
		}
		loss := money(el)
		row.ExpectedLoss = &loss
	}
	return row, nil
}
