package contract

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/core/flatten"
	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultPrecision   = 4
	MaxPrecision       = 8
	DefaultBins        = 200
	MaxBins            = 10000
	DefaultAddr        = "127.0.0.1:8080"
	DefaultLogLevel    = "info"
	DefaultOutDir      = "."
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// UploadConfig holds the optional S3 destination for written artifacts.
type UploadConfig struct {
	Bucket string
	Prefix string
	Region string
}

// Enabled reports whether artifacts should be uploaded.
func (u UploadConfig) Enabled() bool {
	return u.Bucket != ""
}

// Config holds the runtime configuration for a command.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath string

	Grid    bls.GridConfig
	Workers int

	Window    int
	Polyorder int
	Trend     bool // Also write the fitted trend when detrending

	Bins       int
	FoldPeriod float64 // 0 means unset
	Epoch      float64 // NaN means first sample time

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Artifacts   ArtifactConfig
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	Upload UploadConfig

	LogLevel  zerolog.Level
	LogFormat schema.LogFormat

	Addr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPath string

	// --- Search grid ---
	MinPeriod        float64 `mapstructure:"min-period"`
	MaxPeriod        float64 `mapstructure:"max-period"`
	NPeriods         int     `mapstructure:"n-periods"`
	DurationFraction float64 `mapstructure:"duration-fraction"`
	MinDuration      float64 `mapstructure:"min-duration"`
	MaxDuration      float64 `mapstructure:"max-duration"`
	Workers          int     `mapstructure:"workers"`

	// --- Detrending ---
	Window    int  `mapstructure:"window"`
	Polyorder int  `mapstructure:"polyorder"`
	Trend     bool `mapstructure:"trend"`

	// --- Folding ---
	Bins   int     `mapstructure:"bins"`
	Period float64 `mapstructure:"period"`
	Epoch  string  `mapstructure:"epoch"`

	// --- Output ---
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	OutDir     string `mapstructure:"out-dir"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Persistence ---
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// --- Artifact upload ---
	UploadBucket string `mapstructure:"upload-bucket"`
	UploadPrefix string `mapstructure:"upload-prefix"`
	UploadRegion string `mapstructure:"upload-region"`

	// --- Logging and serving ---
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Addr      string `mapstructure:"addr"`
}

// DefaultConfig returns a validated config with every default applied.
// It is the base for callers that do not go through viper, like the MCP and HTTP servers.
func DefaultConfig() *Config {
	return &Config{
		Grid:         bls.DefaultGridConfig(),
		Workers:      DefaultWorkers,
		Window:       flatten.DefaultWindow,
		Polyorder:    flatten.DefaultPolyorder,
		Bins:         DefaultBins,
		Epoch:        math.NaN(),
		ResultLimit:  DefaultResultLimit,
		Precision:    DefaultPrecision,
		Output:       schema.TextOut,
		UseColors:    true,
		CacheBackend: schema.NoneBackend,
		RunBackend:   schema.NoneBackend,
		LogLevel:     zerolog.InfoLevel,
		LogFormat:    schema.TextLog,
		Addr:         DefaultAddr,
	}
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Params returns the settings that shape a search result, for run tracking.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"min_period":        c.Grid.MinPeriod,
		"max_period":        c.Grid.MaxPeriod,
		"n_periods":         c.Grid.NPeriods,
		"duration_fraction": c.Grid.DurationFraction,
		"min_duration":      c.Grid.MinDuration,
		"max_duration":      c.Grid.MaxDuration,
		"window":            c.Window,
		"polyorder":         c.Polyorder,
		"workers":           c.Workers,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSearchGrid(cfg, input); err != nil {
		return err
	}
	if err := processDetrend(cfg, input); err != nil {
		return err
	}
	if err := processFold(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := ProcessLogging(cfg, input); err != nil {
		return err
	}
	cfg.Artifacts = NewArtifactConfig(input.OutDir, input.OutputFile, cfg.InputPath, cfg.Output)
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunBackend == "" {
		cfg.RunBackend = schema.NoneBackend
		return nil
	}
	if _, ok := schema.ValidRunBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("runs-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunDBConnect
		if runsPath == "" {
			runsPath = GetRunDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and general fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPath)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	cfg.Upload = UploadConfig{
		Bucket: strings.TrimSpace(input.UploadBucket),
		Prefix: strings.Trim(input.UploadPrefix, "/"),
		Region: input.UploadRegion,
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	return nil
}

// processSearchGrid copies the grid knobs and checks them up front so that
// a bad flag fails before any input is read.
func processSearchGrid(cfg *Config, input *ConfigRawInput) error {
	cfg.Grid = bls.GridConfig{
		MinPeriod:        input.MinPeriod,
		MaxPeriod:        input.MaxPeriod,
		NPeriods:         input.NPeriods,
		DurationFraction: input.DurationFraction,
		MinDuration:      input.MinDuration,
		MaxDuration:      input.MaxDuration,
	}
	if err := cfg.Grid.Validate(); err != nil {
		return fmt.Errorf("invalid search grid: %w", err)
	}
	return nil
}

// processDetrend validates the Savitzky-Golay window.
func processDetrend(cfg *Config, input *ConfigRawInput) error {
	if input.Polyorder < 0 {
		return fmt.Errorf("polyorder must be zero or greater (received %d)", input.Polyorder)
	}
	if input.Window <= input.Polyorder || input.Window%2 == 0 {
		return fmt.Errorf("window must be an odd number greater than polyorder %d (received %d)", input.Polyorder, input.Window)
	}
	cfg.Window = input.Window
	cfg.Polyorder = input.Polyorder
	cfg.Trend = input.Trend
	return nil
}

// processFold validates the folding period, epoch and bin count.
func processFold(cfg *Config, input *ConfigRawInput) error {
	if input.Bins < 2 || input.Bins > MaxBins {
		return fmt.Errorf("bins must be between 2 and %d (received %d)", MaxBins, input.Bins)
	}
	cfg.Bins = input.Bins

	if math.IsNaN(input.Period) || math.IsInf(input.Period, 0) || input.Period < 0 {
		return fmt.Errorf("period must be a positive number of days (received %v)", input.Period)
	}
	cfg.FoldPeriod = input.Period

	cfg.Epoch = math.NaN()
	if s := strings.TrimSpace(input.Epoch); s != "" {
		epoch, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(epoch) || math.IsInf(epoch, 0) {
			return fmt.Errorf("invalid epoch '%s'. must be a finite time in days", input.Epoch)
		}
		cfg.Epoch = epoch
	}
	return nil
}

// ProcessLogging parses the log level and format. Maintenance commands call it
// directly since they skip full validation.
func ProcessLogging(cfg *Config, input *ConfigRawInput) error {
	levelStr := strings.ToLower(strings.TrimSpace(input.LogLevel))
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", input.LogLevel, err)
	}
	cfg.LogLevel = level

	cfg.LogFormat = schema.LogFormat(strings.ToLower(input.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = schema.TextLog
	}
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
