// Package config loads the run configuration: search roots, discovery
// filters, sample-name cleaning and plot/output settings.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Interactive plot backends.
const (
	BackendPayload = "payload"
	BackendECharts = "echarts"
)

// Sentinel validation errors.
var (
	ErrInvalidSizeLimit = errors.New("invalid file size limit")
	ErrInvalidThreshold = errors.New("flat plot threshold must be positive")
	ErrUnknownBackend   = errors.New("unknown interactive plot backend")
	ErrUnknownFormat    = errors.New("unknown data export format")
	ErrUnknownLogFormat = errors.New("unknown log format")
)

var (
	knownBackends   = []string{BackendPayload, BackendECharts}
	knownFormats    = []string{"tsv", "csv", "json", "yaml"}
	knownLogFormats = []string{"text", "json"}
)

// Config holds all configuration of one report run.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Plots     PlotsConfig     `mapstructure:"plots"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SearchConfig controls file discovery and sample naming.
type SearchConfig struct {
	Roots         []string `mapstructure:"roots"`
	IgnoreFiles   []string `mapstructure:"ignore_files"`
	FileSizeLimit string   `mapstructure:"file_size_limit"`
	CleanExts     []string `mapstructure:"clean_exts"`
	PrependDirs   bool     `mapstructure:"prepend_dirs"`

	// sizeLimitBytes is FileSizeLimit parsed during validation.
	sizeLimitBytes int64
}

// SizeLimitBytes returns the content-scan size limit in bytes.
func (s SearchConfig) SizeLimitBytes() int64 {
	return s.sizeLimitBytes
}

// PlotsConfig controls renderer selection.
type PlotsConfig struct {
	FlatThreshold      int    `mapstructure:"flat_threshold"`
	InteractiveBackend string `mapstructure:"interactive_backend"`
	Theme              string `mapstructure:"theme"`
}

// OutputConfig controls where the report and data files go.
type OutputConfig struct {
	Directory      string `mapstructure:"directory"`
	ReportFilename string `mapstructure:"report_filename"`
	DataFormat     string `mapstructure:"data_format"`
	Title          string `mapstructure:"title"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds the optional OTLP export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and QCREPORT_* environment variables.
// An empty configPath searches ./qcreport_config.yaml and ~/.qcreport_config.yaml.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("qcreport_config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix("QCREPORT")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the validated default configuration.
func Default() *Config {
	config := &Config{
		Search: SearchConfig{
			Roots:         []string{"."},
			IgnoreFiles:   slices.Clone(DefaultIgnoreFiles),
			FileSizeLimit: DefaultFileSizeLimit,
			CleanExts:     slices.Clone(DefaultCleanExts),
			PrependDirs:   DefaultPrependDirs,
		},
		Plots: PlotsConfig{
			FlatThreshold:      DefaultFlatThreshold,
			InteractiveBackend: DefaultInteractiveBackend,
			Theme:              DefaultTheme,
		},
		Output: OutputConfig{
			Directory:      DefaultOutputDir,
			ReportFilename: DefaultReportFilename,
			DataFormat:     DefaultDataFormat,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}

	// Defaults always validate.
	_ = config.Validate()

	return config
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("search.roots", []string{"."})
	viperCfg.SetDefault("search.ignore_files", DefaultIgnoreFiles)
	viperCfg.SetDefault("search.file_size_limit", DefaultFileSizeLimit)
	viperCfg.SetDefault("search.clean_exts", DefaultCleanExts)
	viperCfg.SetDefault("search.prepend_dirs", DefaultPrependDirs)

	viperCfg.SetDefault("plots.flat_threshold", DefaultFlatThreshold)
	viperCfg.SetDefault("plots.interactive_backend", DefaultInteractiveBackend)
	viperCfg.SetDefault("plots.theme", DefaultTheme)

	viperCfg.SetDefault("output.directory", DefaultOutputDir)
	viperCfg.SetDefault("output.report_filename", DefaultReportFilename)
	viperCfg.SetDefault("output.data_format", DefaultDataFormat)
	viperCfg.SetDefault("output.title", "")

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
}

// Validate checks the configuration and resolves derived values such as the
// size limit in bytes.
func (c *Config) Validate() error {
	size, err := humanize.ParseBytes(c.Search.FileSizeLimit)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSizeLimit, c.Search.FileSizeLimit, err)
	}

	c.Search.sizeLimitBytes = int64(size) //nolint:gosec // configured limits stay far below MaxInt64.

	if c.Plots.FlatThreshold <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, c.Plots.FlatThreshold)
	}

	if !slices.Contains(knownBackends, c.Plots.InteractiveBackend) {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Plots.InteractiveBackend)
	}

	if !slices.Contains(knownFormats, c.Output.DataFormat) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Output.DataFormat)
	}

	if !slices.Contains(knownLogFormats, c.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, c.Logging.Format)
	}

	return nil
}
