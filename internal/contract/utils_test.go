package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/transit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		sde   float64
		label string
	}{
		{"noise", 2, schema.NoiseSignal},
		{"weak", 5.5, schema.WeakSignal},
		{"moderate", 7, schema.ModerateSignal},
		{"strong", 12, schema.StrongSignal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.sde)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})

	t.Run("missing parent directories are created", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".transit_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	runPath := GetRunDBFilePath()
	assert.Contains(t, runPath, ".transit_runs.db")
	assert.NotEqual(t, cachePath, runPath)
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path untouched", "a.csv", 10, "a.csv"},
		{"exact width untouched", "abcde", 5, "abcde"},
		{"long path truncated", "data/lightcurves/tic_25155310.csv", 12, "...55310.csv"},
		{"tiny width untouched", "data/lightcurve.csv", 3, "data/lightcurve.csv"},
		{"multibyte runes", "données/α.csv", 8, "...α.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		wantErr  bool
	}{
		{"yes", true, false},
		{"YES", true, false},
		{"true", true, false},
		{"1", true, false},
		{" no ", false, false},
		{"false", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// FuzzParseBoolString checks that parsing never panics and that accepted
// values are stable under case changes.
func FuzzParseBoolString(f *testing.F) {
	for _, seed := range []string{"yes", "No", "1", "0", "", "tRuE", "maybe"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseBoolString(s)
		if err != nil {
			return
		}
		again, err := ParseBoolString(strings.ToUpper(s))
		if err == nil {
			assert.Equal(t, got, again)
		}
	})
}

// FuzzTruncatePath checks that truncation never exceeds the width when it applies.
func FuzzTruncatePath(f *testing.F) {
	f.Add("data/lightcurve.csv", 8)
	f.Add("", 0)
	f.Add("α/β/γ.csv", 4)

	f.Fuzz(func(t *testing.T, path string, maxWidth int) {
		out := TruncatePath(path, maxWidth)
		if maxWidth > 3 {
			assert.LessOrEqual(t, len([]rune(out)), max(maxWidth, len([]rune(path))))
			if len([]rune(path)) > maxWidth {
				assert.Len(t, []rune(out), maxWidth)
			}
		}
	})
}
