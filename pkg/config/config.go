// Package config provides configuration loading and management for the
// optical flow verification suite. It handles loading configuration from
// YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the MAE classification limits for one pattern category.
type Thresholds struct {
	// MAEPass is the worst-case per-component MAE, in pixels, up to which
	// a result counts as passing
	MAEPass float64 `yaml:"maePass"`

	// MAEWarning is the worst-case per-component MAE up to which a result
	// counts as a warning rather than a failure
	MAEWarning float64 `yaml:"maeWarning"`
}

// PyramidSettings holds one named pyramidal estimator configuration.
type PyramidSettings struct {
	// Levels is the number of pyramid levels
	Levels int `yaml:"levels"`

	// WindowSize is the side length of the least-squares window in pixels
	WindowSize int `yaml:"windowSize"`

	// Iterations is the refinement iteration budget per level
	Iterations int `yaml:"iterations"`
}

// Config represents the verification suite configuration loaded from YAML
type Config struct {
	// Suite parameters
	Suite struct {
		// Dir is the directory holding the generated test patterns
		Dir string `yaml:"dir"`

		// Width and Height are the frame dimensions used when generating
		// patterns
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// NumWorkers specifies how many CPU cores the solver may use
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"suite"`

	// PatternCategories maps a category name to the pattern names it
	// contains, used to pick classification thresholds per pattern
	PatternCategories map[string][]string `yaml:"patternCategories"`

	// CategoryThresholds maps a category name to its MAE limits
	CategoryThresholds map[string]Thresholds `yaml:"thresholds"`

	// Pyramids maps a configuration name to pyramidal estimator settings;
	// the "default" entry also supplies the single-scale window size
	Pyramids map[string]PyramidSettings `yaml:"pyramids"`

	// TestRegion parameters
	TestRegion struct {
		// BorderMargin excludes this many pixels on each side for
		// translation patterns
		BorderMargin int `yaml:"borderMargin"`

		// CenterCrop is the side length of the centered test box for
		// rotation and zoom patterns
		CenterCrop int `yaml:"centerCrop"`
	} `yaml:"testRegion"`

	// Visualization parameters
	Visualization struct {
		// ShowcasePatterns lists the patterns that get quiver plots and
		// error heatmaps
		ShowcasePatterns []string `yaml:"showcasePatterns"`

		// QuiverStep is the arrow spacing in pixels
		QuiverStep int `yaml:"quiverStep"`

		// QuiverScale is the arrow length scale factor
		QuiverScale float64 `yaml:"quiverScale"`

		// ErrorMax is the heatmap color range upper bound in pixels
		ErrorMax float64 `yaml:"errorMax"`
	} `yaml:"visualization"`

	// Output parameters
	Output struct {
		// ResultsMarkdown is the path of the markdown results table
		ResultsMarkdown string `yaml:"resultsMarkdown"`

		// ResultsJSON is the path of the JSON results file
		ResultsJSON string `yaml:"resultsJson"`

		// BaselinePath is the path of the regression baseline file
		BaselinePath string `yaml:"baselinePath"`

		// VisualizationsDir is the directory that receives plot images
		VisualizationsDir string `yaml:"visualizationsDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Suite.Dir = "test_suite"
	cfg.Suite.Width = 320
	cfg.Suite.Height = 240
	cfg.Suite.NumWorkers = runtime.NumCPU() // Use all available cores by default

	cfg.PatternCategories = map[string][]string{
		"translation": {
			"translate_small", "translate_medium", "translate_large",
			"translate_vertical", "translate_diagonal", "no_motion",
		},
		"rotation": {"rotate_small", "rotate_medium", "rotate_large"},
		"zoom":     {"zoom_in", "zoom_out"},
		"combined": {"translate_rotate"},
		"extreme":  {"translate_extreme"},
	}

	cfg.CategoryThresholds = map[string]Thresholds{
		"translation": {MAEPass: 0.5, MAEWarning: 1.0},
		"rotation":    {MAEPass: 1.0, MAEWarning: 2.0},
		"zoom":        {MAEPass: 1.0, MAEWarning: 2.0},
		"combined":    {MAEPass: 1.5, MAEWarning: 3.0},
		"extreme":     {MAEPass: 5.0, MAEWarning: 10.0},
	}

	cfg.Pyramids = map[string]PyramidSettings{
		"default": {Levels: 3, WindowSize: 15, Iterations: 3},
		"shallow": {Levels: 2, WindowSize: 15, Iterations: 3},
		"deep":    {Levels: 4, WindowSize: 15, Iterations: 5},
	}

	cfg.TestRegion.BorderMargin = 10
	cfg.TestRegion.CenterCrop = 100

	cfg.Visualization.ShowcasePatterns = []string{
		"translate_medium", "translate_large", "rotate_small", "zoom_in",
	}
	cfg.Visualization.QuiverStep = 10
	cfg.Visualization.QuiverScale = 1.0
	cfg.Visualization.ErrorMax = 5.0

	cfg.Output.ResultsMarkdown = "results/verification_results.md"
	cfg.Output.ResultsJSON = "results/verification_results.json"
	cfg.Output.BaselinePath = "results/verification_baseline.json"
	cfg.Output.VisualizationsDir = "results/visualizations"
	cfg.Output.Verbose = true

	return cfg
}

// ThresholdsFor returns the classification thresholds for a pattern name
// by looking up its category. Patterns outside every category fall back to
// the translation thresholds.
func (cfg *Config) ThresholdsFor(patternName string) Thresholds {
	for category, patterns := range cfg.PatternCategories {
		for _, name := range patterns {
			if name == patternName {
				if t, ok := cfg.CategoryThresholds[category]; ok {
					return t
				}
			}
		}
	}
	return cfg.CategoryThresholds["translation"]
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
