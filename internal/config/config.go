package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "descstats/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. STATS_LOGGING_LEVEL.
const EnvPrefix = "STATS"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Runner    RunnerConfig    `yaml:"runner" envconfig:"RUNNER"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Datasets  []DatasetConfig `yaml:"datasets" ignored:"true" validate:"required,min=1,unique=Name,dive"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative entries
// resolve against BaseDir, which defaults to the working directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	FiguresDir string `yaml:"figures_dir" envconfig:"FIGURES_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// ReportConfig controls the JSON and workbook outputs
type ReportConfig struct {
	PreviewGroups int  `yaml:"preview_groups" envconfig:"PREVIEW_GROUPS" validate:"min=0"`
	Workbook      bool `yaml:"workbook" envconfig:"WORKBOOK"`
	Indent        int  `yaml:"indent" envconfig:"INDENT" validate:"min=0,max=8"`
}

// ChartsConfig controls figure rendering
type ChartsConfig struct {
	TopN         int     `yaml:"top_n" envconfig:"TOP_N" validate:"min=1"`
	Bins         int     `yaml:"bins" envconfig:"BINS" validate:"min=1"`
	ClipQuantile float64 `yaml:"clip_quantile" envconfig:"CLIP_QUANTILE" validate:"gt=0,lte=1"`
	WidthInches  float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES" validate:"gt=0"`
	HeightInches float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES" validate:"gt=0"`
}

// RunnerConfig controls dataset scheduling
type RunnerConfig struct {
	Parallelism int `yaml:"parallelism" envconfig:"PARALLELISM" validate:"min=1"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`

	// ReportPoll is how often the output directory is checked for regenerated
	// reports pushed to /api/ws subscribers. Zero disables the watcher.
	ReportPoll time.Duration `yaml:"report_poll" envconfig:"REPORT_POLL" validate:"gte=0"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS"`
}

// Load builds the configuration: defaults, then the optional YAML file,
// then STATS_* environment variables. The result is validated. Failures are
// CONFIG AppErrors.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("file", configFile)
		}
	}

	// Only variables that are actually set override; no default tags are used.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if len(cfg.Datasets) == 0 {
		cfg.Datasets = DefaultDatasets()
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes the logging section
func (c *Config) Validate() error {
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/descstats.log"
	}

	if err := validate.Struct(c); err != nil {
		return err
	}
	for _, ds := range c.Datasets {
		if err := ds.check(); err != nil {
			return fmt.Errorf("dataset %s: %w", ds.Name, err)
		}
	}
	return nil
}

// Dataset returns the named dataset definition
func (c *Config) Dataset(name string) (DatasetConfig, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

var validate = validator.New()

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/descstats.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			OutputDir:  "output",
			FiguresDir: "figures",
			LogsDir:    "logs",
		},
		Report: ReportConfig{
			PreviewGroups: 3,
			Workbook:      true,
			Indent:        2,
		},
		Charts: ChartsConfig{
			TopN:         10,
			Bins:         50,
			ClipQuantile: 0.99,
			WidthInches:  6,
			HeightInches: 4,
		},
		Runner: RunnerConfig{
			Parallelism: 1,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			ReportPoll:      2 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "descstats",
			Environment:   "development",
			TraceExporter: "none",
			Metrics:       true,
		},
		Datasets: DefaultDatasets(),
	}
}
