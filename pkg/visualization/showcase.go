package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"lkflow/pkg/flow"
)

// ShowcaseOptions bundles the rendering parameters for one pattern's
// visualization set.
type ShowcaseOptions struct {
	QuiverStep  int
	QuiverScale float64
	ErrorMax    float64
}

// Showcase writes the full visualization set for one pattern under
// outputDir/<patternName>/: quiver plots and error heatmaps for both the
// single-scale and pyramidal results.
func Showcase(patternName, outputDir string, single, pyramidal *flow.Field, uTrue, vTrue float64, opts ShowcaseOptions) error {
	dir := filepath.Join(outputDir, patternName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating visualization directory: %w", err)
	}

	quiver := QuiverOptions{Step: opts.QuiverStep, Scale: opts.QuiverScale}

	quiver.Title = fmt.Sprintf("%s - Single-Scale Flow Field", patternName)
	if err := FlowQuiver(single, filepath.Join(dir, "flow_single.png"), quiver); err != nil {
		return err
	}
	quiver.Title = fmt.Sprintf("%s - Pyramidal Flow Field", patternName)
	if err := FlowQuiver(pyramidal, filepath.Join(dir, "flow_pyramidal.png"), quiver); err != nil {
		return err
	}

	if err := ErrorHeatmap(single, uTrue, vTrue,
		filepath.Join(dir, "error_single.png"), opts.ErrorMax,
		fmt.Sprintf("%s - Single-Scale Error", patternName)); err != nil {
		return err
	}
	if err := ErrorHeatmap(pyramidal, uTrue, vTrue,
		filepath.Join(dir, "error_pyramidal.png"), opts.ErrorMax,
		fmt.Sprintf("%s - Pyramidal Error", patternName)); err != nil {
		return err
	}
	return nil
}
