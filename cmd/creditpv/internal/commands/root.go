// Package commands implements the creditpv command tree.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/cmd/creditpv/internal/tradefile"
	"github.com/meenmo/credlib/config"
	"github.com/meenmo/credlib/logging"
	"github.com/meenmo/credlib/pricing"
)

var (
	// Global flags
	tradesPath string
	configPath string
	logLevel   string

	// Set by loadSession before every subcommand runs.
	cfg    *config.Config
	log    *logging.Logger
	trades *tradefile.File
	market *tradefile.Market
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "creditpv",
	Short: "Credit contingent cash-flow pricer",
	Long: `creditpv values CDS, credit-linked notes, indices and nth-to-default
baskets from a YAML trade file. Results are written as one JSON object per line.

Examples:
  creditpv price --trades trades.yaml
  creditpv breakeven --trades trades.yaml
  creditpv scenario --trades trades.yaml --hazard-bp 1,10 --workers 4`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSession,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tradesPath, "trades", "", "trade file (YAML)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML, optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
}

func loadSession(cmd *cobra.Command, args []string) error {
	if tradesPath == "" {
		return errors.New("--trades is required")
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	config.SetConfig(*c)
	cfg = c
	log = logging.NewWithWriter(c.Log, cmd.ErrOrStderr())

	f, err := tradefile.Load(tradesPath)
	if err != nil {
		return err
	}
	m, err := tradefile.NewMarket(f)
	if err != nil {
		return fmt.Errorf("market: %w", err)
	}
	if m.Policy, err = pricing.PolicyFromConfig(c.Pricing); err != nil {
		return err
	}
	m.Solver = pricing.SolverFromConfig(c.Solver)
	m.Solver.Logger = log
	m.Log = log

	trades, market = f, m
	log.WithFields(map[string]any{
		"trades": len(f.Trades),
		"curves": len(f.Curves),
		"settle": m.Settle.Format("2006-01-02"),
	}).Debug("session loaded")
	return nil
}
