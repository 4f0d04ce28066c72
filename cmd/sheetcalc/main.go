package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"sheetcalc/internal/config"
	"sheetcalc/internal/exporter"
	"sheetcalc/internal/infrastructure"
	"sheetcalc/internal/mtm"
	"sheetcalc/internal/services"
	"sheetcalc/internal/weather"
	"sheetcalc/pkg/contracts"
)

// cli carries the state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE so tests can build a fresh tree per run.
type cli struct {
	verbose bool

	cfg       *config.Config
	logger    *slog.Logger
	valuation *services.ValuationService
	weather   *services.WeatherService
}

// exitError is printed verbatim by main.
type exitError struct {
	msg string
}

func (e *exitError) Error() string { return e.msg }

func failf(format string, args ...any) error {
	return &exitError{msg: fmt.Sprintf(format, args...)}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "sheetcalc",
		Short: "Spreadsheet calculations for trading and weather workbooks",
		Long: `sheetcalc values iron ore contracts mark-to-market from a trading
workbook and answers precipitation questions from a weather workbook.

Configuration is read from config.yaml (or SHEETCALC_CONFIG), a .env file
and SHEETCALC_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log progress to stderr")

	root.AddCommand(newMTMCmd(c))
	root.AddCommand(newWeatherCmd(c))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads the configuration and builds the services. The CLI keeps
// telemetry off; spans and metrics go to the no-op providers.
func (c *cli) setup(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg

	logCfg := cfg.Logging
	logCfg.Format = "text"
	logCfg.Level = "warn"
	if c.verbose {
		logCfg.Level = "debug"
	}
	c.logger = infrastructure.NewLogger(logCfg, stderr)

	engine := mtm.NewEngine(cfg.MTM, c.logger)
	c.valuation = services.NewValuationService(engine, exporter.DefaultOptions(), nil, nil, c.logger)
	c.weather = services.NewWeatherService(weather.NewAssistant(cfg.Weather, c.logger), nil, nil, c.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// The version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
