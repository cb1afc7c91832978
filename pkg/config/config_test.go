package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, 320, cfg.Suite.Width)
	assert.Equal(t, 240, cfg.Suite.Height)
	assert.Greater(t, cfg.Suite.NumWorkers, 0)

	// Every catalogued pattern belongs to a category with thresholds.
	total := 0
	for category, patterns := range cfg.PatternCategories {
		_, ok := cfg.CategoryThresholds[category]
		assert.True(t, ok, "category %q has no thresholds", category)
		total += len(patterns)
	}
	assert.Equal(t, 13, total)

	def, ok := cfg.Pyramids["default"]
	require.True(t, ok, "no default pyramid settings")
	assert.Equal(t, 3, def.Levels)
	assert.Equal(t, 15, def.WindowSize)
	assert.Equal(t, 3, def.Iterations)

	assert.Equal(t, 10, cfg.TestRegion.BorderMargin)
	assert.Equal(t, 100, cfg.TestRegion.CenterCrop)
}

func TestThresholdsFor(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	t.Run("category lookup", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1.0, cfg.ThresholdsFor("rotate_medium").MAEPass)
		assert.Equal(t, 5.0, cfg.ThresholdsFor("translate_extreme").MAEPass)
		assert.Equal(t, 3.0, cfg.ThresholdsFor("translate_rotate").MAEWarning)
	})

	t.Run("unknown pattern falls back to translation", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, cfg.CategoryThresholds["translation"], cfg.ThresholdsFor("mystery_pattern"))
	})
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Suite.Width = 160
	cfg.Suite.Height = 120
	cfg.Output.Verbose = false
	cfg.CategoryThresholds["rotation"] = Thresholds{MAEPass: 0.25, MAEWarning: 0.75}

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 160, loaded.Suite.Width)
	assert.Equal(t, 120, loaded.Suite.Height)
	assert.False(t, loaded.Output.Verbose)
	assert.Equal(t, 0.25, loaded.CategoryThresholds["rotation"].MAEPass)
	assert.Equal(t, cfg.Visualization.ShowcasePatterns, loaded.Visualization.ShowcasePatterns)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	loaded, err := LoadConfig(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Suite.Width, loaded.Suite.Width)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	t.Parallel()

	// A file that only overrides a few keys keeps defaults for the rest.
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "suite:\n  width: 80\n  height: 60\npyramids:\n  deep:\n    levels: 5\n    windowSize: 21\n    iterations: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 80, loaded.Suite.Width)
	assert.Equal(t, 60, loaded.Suite.Height)
	assert.Equal(t, PyramidSettings{Levels: 5, WindowSize: 21, Iterations: 4}, loaded.Pyramids["deep"])
	assert.Equal(t, 3, loaded.Pyramids["default"].Levels)
	assert.Equal(t, 10, loaded.TestRegion.BorderMargin)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suite: [not a mapping"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
