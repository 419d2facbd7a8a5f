// Package commands implements CLI command handlers for qcreport.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/qcreport/pkg/config"
	"github.com/Sumatoshi-tech/qcreport/pkg/module"
	"github.com/Sumatoshi-tech/qcreport/pkg/modules/filescan"
	"github.com/Sumatoshi-tech/qcreport/pkg/observability"
	"github.com/Sumatoshi-tech/qcreport/pkg/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	quiet      bool
}

// NewRootCommand creates the qcreport command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "qcreport",
		Short: "qcreport - aggregate tool logs into one QC report",
		Long: `qcreport searches directories for tool log files and summarises them
in a single HTML report with data exports.

Commands:
  run       Discover logs, run modules and write the report
  scan      List the files a search would match`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./qcreport_config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")

	rootCmd.AddCommand(NewRunCommand(opts, defaultRegistry))
	rootCmd.AddCommand(NewScanCommand(opts))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

type registryProvider func() (*module.Registry, error)

func defaultRegistry() (*module.Registry, error) {
	registry := module.NewRegistry()

	err := registry.Register("filescan", filescan.Factory(filescan.Options{}))
	if err != nil {
		return nil, fmt.Errorf("register modules: %w", err)
	}

	return registry, nil
}

// loadConfig reads the configuration file and environment.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// observabilityConfig maps the run configuration and verbosity flags to
// logger and telemetry settings.
func (o *globalOptions) observabilityConfig(cfg *config.Config) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure

	switch {
	case o.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case o.quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg
}
