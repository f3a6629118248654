package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	ETL     ETLConfig     `yaml:"etl" envconfig:"ETL"`
	Geodata GeodataConfig `yaml:"geodata" envconfig:"GEODATA"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/etl.log"`
}

// PathsConfig contains the data root; everything else hangs off it
type PathsConfig struct {
	RootDir string `yaml:"root_dir" envconfig:"ROOT_DIR" default:"."`
}

// ETLConfig contains the tunables of the cleaning pipeline
type ETLConfig struct {
	WinsorLo float64 `yaml:"winsor_lo" envconfig:"WINSOR_LO" default:"0.01" validate:"gte=0,lte=1"`
	WinsorHi float64 `yaml:"winsor_hi" envconfig:"WINSOR_HI" default:"0.99" validate:"gte=0,lte=1,gtefield=WinsorLo"`
	OutlierK float64 `yaml:"outlier_k" envconfig:"OUTLIER_K" default:"1.5" validate:"gt=0"`
}

// GeodataConfig contains the neighborhood geodata client configuration
type GeodataConfig struct {
	OverpassURL    string        `yaml:"overpass_url" envconfig:"OVERPASS_URL" default:"http://overpass-api.de/api/interpreter" validate:"url"`
	FallbackURL    string        `yaml:"fallback_url" envconfig:"FALLBACK_URL" default:"https://overpass.private.coffee/api/interpreter" validate:"url"`
	NominatimURL   string        `yaml:"nominatim_url" envconfig:"NOMINATIM_URL" default:"https://nominatim.openstreetmap.org/search" validate:"url"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"3m"`
	CacheTTL       time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"168h"`
	RPS            float64       `yaml:"rps" envconfig:"RPS" default:"1" validate:"gt=0"`
	Burst          int           `yaml:"burst" envconfig:"BURST" default:"2" validate:"gt=0"`
	MaxConcurrent  int           `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT" default:"4" validate:"gt=0"`
}

// TracingConfig controls otel span export for pipeline runs
type TracingConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED" default:"false"`
}

// Load loads configuration from environment variables and an optional
// config file. Explicitly set environment variables take precedence over
// file values; file values take precedence over built-in defaults.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ETL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		applyFileConfig(&cfg, fileCfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// getConfigFilePath returns the config file location, overridable via env
func getConfigFilePath() string {
	if path := os.Getenv("ETL_CONFIG_FILE"); path != "" {
		return path
	}
	return "etl.yaml"
}

// fileConfig mirrors Config with pointer fields so an absent yaml key is
// distinguishable from an explicit zero value during the merge.
type fileConfig struct {
	Logging struct {
		Level    *string `yaml:"level"`
		Format   *string `yaml:"format"`
		Output   *string `yaml:"output"`
		FilePath *string `yaml:"file_path"`
	} `yaml:"logging"`
	Paths struct {
		RootDir *string `yaml:"root_dir"`
	} `yaml:"paths"`
	ETL struct {
		WinsorLo *float64 `yaml:"winsor_lo"`
		WinsorHi *float64 `yaml:"winsor_hi"`
		OutlierK *float64 `yaml:"outlier_k"`
	} `yaml:"etl"`
	Geodata struct {
		OverpassURL  *string `yaml:"overpass_url"`
		FallbackURL  *string `yaml:"fallback_url"`
		NominatimURL *string `yaml:"nominatim_url"`
	} `yaml:"geodata"`
	Tracing struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*fileConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyFileConfig merges file values into cfg. envconfig has already filled
// cfg with env values and defaults, so a file value is applied only when its
// matching environment variable was not set explicitly.
func applyFileConfig(cfg *Config, file *fileConfig) {
	setString(&cfg.Logging.Level, file.Logging.Level, "ETL_LOGGING_LEVEL")
	setString(&cfg.Logging.Format, file.Logging.Format, "ETL_LOGGING_FORMAT")
	setString(&cfg.Logging.Output, file.Logging.Output, "ETL_LOGGING_OUTPUT")
	setString(&cfg.Logging.FilePath, file.Logging.FilePath, "ETL_LOGGING_FILE_PATH")
	setString(&cfg.Paths.RootDir, file.Paths.RootDir, "ETL_PATHS_ROOT_DIR")
	setFloat(&cfg.ETL.WinsorLo, file.ETL.WinsorLo, "ETL_ETL_WINSOR_LO")
	setFloat(&cfg.ETL.WinsorHi, file.ETL.WinsorHi, "ETL_ETL_WINSOR_HI")
	setFloat(&cfg.ETL.OutlierK, file.ETL.OutlierK, "ETL_ETL_OUTLIER_K")
	setString(&cfg.Geodata.OverpassURL, file.Geodata.OverpassURL, "ETL_GEODATA_OVERPASS_URL")
	setString(&cfg.Geodata.FallbackURL, file.Geodata.FallbackURL, "ETL_GEODATA_FALLBACK_URL")
	setString(&cfg.Geodata.NominatimURL, file.Geodata.NominatimURL, "ETL_GEODATA_NOMINATIM_URL")
	setBool(&cfg.Tracing.Enabled, file.Tracing.Enabled, "ETL_TRACING_ENABLED")
}

func setString(dst *string, src *string, envKey string) {
	if src == nil {
		return
	}
	if _, ok := os.LookupEnv(envKey); ok {
		return
	}
	*dst = *src
}

func setFloat(dst *float64, src *float64, envKey string) {
	if src == nil {
		return
	}
	if _, ok := os.LookupEnv(envKey); ok {
		return
	}
	*dst = *src
}

func setBool(dst *bool, src *bool, envKey string) {
	if src == nil {
		return
	}
	if _, ok := os.LookupEnv(envKey); ok {
		return
	}
	*dst = *src
}

// validate validates the configuration using struct tags
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.ETL.WinsorLo >= c.ETL.WinsorHi {
		return fmt.Errorf("winsor_lo (%v) must be below winsor_hi (%v)", c.ETL.WinsorLo, c.ETL.WinsorHi)
	}
	return nil
}
