package contract

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/huangsam/transit/core/bls"
	"github.com/huangsam/transit/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input with every default applied, like viper would produce.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		InputPath:        "data/tic_25155310.csv",
		MinPeriod:        bls.DefaultMinPeriod,
		MaxPeriod:        bls.DefaultMaxPeriod,
		NPeriods:         bls.DefaultNPeriods,
		DurationFraction: bls.DefaultDurationFraction,
		MinDuration:      bls.DefaultMinDuration,
		MaxDuration:      bls.DefaultMaxDuration,
		Workers:          4,
		Window:           401,
		Polyorder:        2,
		Bins:             DefaultBins,
		Limit:            DefaultResultLimit,
		Precision:        DefaultPrecision,
		Output:           "text",
		Color:            "yes",
		CacheBackend:     "none",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", modify: func(*ConfigRawInput) {}},
		{name: "invalid output", modify: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "uppercase output", modify: func(in *ConfigRawInput) { in.Output = "JSON" }},
		{name: "zero limit", modify: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: true},
		{name: "limit too large", modify: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: true},
		{name: "zero workers", modify: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "precision too high", modify: func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }, expectError: true},
		{name: "bad color", modify: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "even window", modify: func(in *ConfigRawInput) { in.Window = 400 }, expectError: true},
		{name: "window not above polyorder", modify: func(in *ConfigRawInput) { in.Window = 3; in.Polyorder = 3 }, expectError: true},
		{name: "negative polyorder", modify: func(in *ConfigRawInput) { in.Polyorder = -1 }, expectError: true},
		{name: "one bin", modify: func(in *ConfigRawInput) { in.Bins = 1 }, expectError: true},
		{name: "negative period", modify: func(in *ConfigRawInput) { in.Period = -1 }, expectError: true},
		{name: "bad epoch", modify: func(in *ConfigRawInput) { in.Epoch = "yesterday" }, expectError: true},
		{name: "valid epoch", modify: func(in *ConfigRawInput) { in.Epoch = "1325.5" }},
		{name: "bad log level", modify: func(in *ConfigRawInput) { in.LogLevel = "loud" }, expectError: true},
		{name: "bad log format", modify: func(in *ConfigRawInput) { in.LogFormat = "xml" }, expectError: true},
		{name: "empty log settings use defaults", modify: func(in *ConfigRawInput) { in.LogLevel = ""; in.LogFormat = "" }},
		{name: "invalid cache backend", modify: func(in *ConfigRawInput) { in.CacheBackend = "mongo" }, expectError: true},
		{name: "redis runs backend rejected", modify: func(in *ConfigRawInput) { in.RunsBackend = "redis"; in.RunsDBConnect = "redis://localhost:6379/0" }, expectError: true},
		{
			name: "redis cache backend",
			modify: func(in *ConfigRawInput) {
				in.CacheBackend = "redis"
				in.CacheDBConnect = "redis://localhost:6379/0"
			},
		},
		{
			name: "same sqlite file for cache and runs",
			modify: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.CacheDBConnect = "/tmp/shared.db"
				in.RunsBackend = "sqlite"
				in.RunsDBConnect = "/tmp/shared.db"
			},
			expectError: true,
		},
		{
			name: "default sqlite files for cache and runs differ",
			modify: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.RunsBackend = "sqlite"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateGridErrors(t *testing.T) {
	t.Run("inverted range", func(t *testing.T) {
		input := validInput()
		input.MinPeriod, input.MaxPeriod = 10, 0.5

		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, bls.ErrInvalidRange))
	})

	t.Run("too few periods", func(t *testing.T) {
		input := validInput()
		input.NPeriods = 1

		err := ProcessAndValidate(&Config{}, input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, bls.ErrInvalidCount))
	})
}

func TestProcessAndValidatePopulatesConfig(t *testing.T) {
	input := validInput()
	input.Output = "Parquet"
	input.OutDir = "out"
	input.Epoch = " 2.5 "
	input.Period = 3.14
	input.LogLevel = "DEBUG"
	input.UploadBucket = "lightcurves"
	input.UploadPrefix = "/runs/2026/"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.ParquetOut, cfg.Output)
	assert.Equal(t, bls.DefaultGridConfig(), cfg.Grid)
	assert.Equal(t, 2.5, cfg.Epoch)
	assert.Equal(t, 3.14, cfg.FoldPeriod)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, schema.NoneBackend, cfg.RunBackend)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.True(t, cfg.Upload.Enabled())
	assert.Equal(t, "runs/2026", cfg.Upload.Prefix)
	assert.Equal(t, filepath.Join("out", "tic_25155310.bls.parquet"), cfg.Artifacts.PeriodogramPath())
}

func TestProcessAndValidateEpochDefaultsToNaN(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))
	assert.True(t, math.IsNaN(cfg.Epoch))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/transit", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/transit", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 user=u password=p dbname=transit", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=transit", true},
		{"redis valid", schema.RedisBackend, "redis://localhost:6379/0", false},
		{"redis tls valid", schema.RedisBackend, "rediss://cache.example.com:6380", false},
		{"redis bare host", schema.RedisBackend, "localhost:6379", true},
		{"redis empty", schema.RedisBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	original := DefaultConfig()
	clone := original.Clone()

	clone.Grid.NPeriods = 10
	clone.Bins = 50

	assert.Equal(t, bls.DefaultNPeriods, original.Grid.NPeriods)
	assert.Equal(t, DefaultBins, original.Bins)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Grid.Validate())
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.True(t, math.IsNaN(cfg.Epoch))

	params := cfg.Params()
	assert.Equal(t, bls.DefaultNPeriods, params["n_periods"])
	assert.Equal(t, bls.DefaultMinPeriod, params["min_period"])
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "transit"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "transit", profile.Prefix)
}
