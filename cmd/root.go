package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/user/nessus2xlsx/pkg/config"
	"github.com/user/nessus2xlsx/pkg/engine"
	"github.com/user/nessus2xlsx/pkg/logger"
	"github.com/user/nessus2xlsx/pkg/nessus"
	"github.com/user/nessus2xlsx/pkg/report"
)

var rootCmd = &cobra.Command{
	Use:   "nessus2xlsx <file>",
	Short: "Convert a Nessus scan into a grouped Excel report",
	Long: `nessus2xlsx reads a .nessus (v2) scan and writes one spreadsheet row per plugin,
listing every affected host and port, sorted by severity and colored by risk.
Informational (severity 0) findings are left out.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

var (
	DebugMode  bool
	ConfigPath string

	outputPath  string
	minSeverity int
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ConfigPath, "config", "", "Config file (default ~/.nessus2xlsx/config.yaml)")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultOutput, "Output Excel file name")
	rootCmd.Flags().IntVar(&minSeverity, "min-severity", config.DefaultMinSeverity, "Lowest severity to include (1-4)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	log := logger.New(DebugMode)

	cfg, err := config.LoadConfig(ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = outputPath
	}
	if cmd.Flags().Changed("min-severity") {
		cfg.MinSeverity = minSeverity
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return convert(args[0], cfg, log, cmd.OutOrStdout())
}

// convert runs the whole pipeline: load, group by plugin, write, format.
func convert(input string, cfg *config.Config, log *logrus.Logger, out io.Writer) error {
	log.Debugf("Loading %s", input)
	parsed, err := nessus.Load(input)
	if err != nil {
		return err
	}

	agg := engine.NewAggregation(log)
	agg.MinSeverity = cfg.MinSeverity
	agg.AddReport(parsed)
	rows := agg.Rows()
	log.Debugf("Grouped findings into %d plugin rows", len(rows))

	opts := report.OptionsFromConfig(cfg)
	opts.Log = log
	if err := report.Export(cfg.Output, rows, opts); err != nil {
		return err
	}

	report.PrintSummary(out, cfg.Output, rows)
	return nil
}
