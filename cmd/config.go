package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/nessus2xlsx/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage default settings (output file, sheet name, column width, severity floor)",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ConfigPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", path)
		_, err = out.Write(data)
		return err
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update and save configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(ConfigPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("output") {
			cfg.Output, _ = flags.GetString("output")
		}
		if flags.Changed("sheet") {
			cfg.SheetName, _ = flags.GetString("sheet")
		}
		if flags.Changed("max-width") {
			cfg.MaxColumnWidth, _ = flags.GetInt("max-width")
		}
		if flags.Changed("min-severity") {
			cfg.MinSeverity, _ = flags.GetInt("min-severity")
		}

		if err := config.SaveConfig(ConfigPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration updated: Output=%s, Sheet=%s, MaxWidth=%d, MinSeverity=%d\n",
			cfg.Output, cfg.SheetName, cfg.MaxColumnWidth, cfg.MinSeverity)
		return nil
	},
}

func init() {
	setConfigCmd.Flags().StringP("output", "o", "", "Default output Excel file name")
	setConfigCmd.Flags().StringP("sheet", "s", "", "Worksheet name")
	setConfigCmd.Flags().Int("max-width", 0, "Maximum column width")
	setConfigCmd.Flags().Int("min-severity", 0, "Lowest severity to include (1-4)")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)
	rootCmd.AddCommand(configCmd)
}
