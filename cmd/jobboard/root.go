package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// v holds the merged configuration of the running command.
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:               "jobboard",
	Short:             "Internship and freelance job board",
	Long:              "jobboard serves the job board REST API and ranks listings or analyzes resumes from the command line.",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "JSON logs for serve, JSON results for rank and analyze-resume")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// initConfig builds a fresh viper instance from the config file and the global flags.
// Environment variables are bound by the config package.
func initConfig(cmd *cobra.Command, _ []string) error {
	v = viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	return bindFlags(cmd, "json", "debug")
}

// bindFlags lets explicitly set flags override the environment and the config file.
func bindFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
