// Package suite generates and loads the on-disk optical flow test suite:
// one directory per named motion pattern holding a frame pair in raw
// binary, hex memory, and PNG forms plus a JSON ground-truth record, and
// a top-level index describing the whole suite.
package suite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"lkflow/internal/models"
	"lkflow/pkg/flow"
	"lkflow/pkg/frame"
	"lkflow/pkg/pattern"
)

// SuiteName labels generated suite indexes.
const SuiteName = "Optical Flow Verification Suite"

// File names inside each pattern directory.
const (
	MetadataFile = "metadata.json"
	IndexFile    = "suite_index.json"
	Frame0Base   = "frame_00"
	Frame1Base   = "frame_01"
)

// Patterns returns the predefined test patterns covering translation,
// rotation, zoom, combined motion, and edge cases. The map is rebuilt on
// every call so callers may mutate their copy.
func Patterns() map[string]models.MotionParameters {
	return map[string]models.MotionParameters{
		"translate_small": {
			Name: "translate_small", DX: 0.5, DY: 0.5, Scale: 1,
			Description: "Sub-pixel motion (tests fixed-point precision)",
		},
		"translate_medium": {
			Name: "translate_medium", DX: 2.0, Scale: 1,
			Description: "Medium horizontal motion (standard test case)",
		},
		"translate_large": {
			Name: "translate_large", DX: 15.0, Scale: 1,
			Description: "Large motion (challenges single-scale estimation)",
		},
		"translate_vertical": {
			Name: "translate_vertical", DY: 10.0, Scale: 1,
			Description: "Vertical motion test",
		},
		"translate_diagonal": {
			Name: "translate_diagonal", DX: 10.0, DY: 10.0, Scale: 1,
			Description: "Diagonal motion (tests both components)",
		},
		"rotate_small": {
			Name: "rotate_small", Rotation: 2.0, Scale: 1,
			Description: "Small rotation (2 deg) violates brightness constancy",
		},
		"rotate_medium": {
			Name: "rotate_medium", Rotation: 5.0, Scale: 1,
			Description: "Medium rotation (5 deg) tests algorithm limits",
		},
		"rotate_large": {
			Name: "rotate_large", Rotation: 15.0, Scale: 1,
			Description: "Large rotation (15 deg), expected failure",
		},
		"zoom_in": {
			Name: "zoom_in", Scale: 1.1,
			Description: "Zoom in (10% expansion)",
		},
		"zoom_out": {
			Name: "zoom_out", Scale: 0.9,
			Description: "Zoom out (10% contraction)",
		},
		"translate_rotate": {
			Name: "translate_rotate", DX: 5.0, DY: 5.0, Rotation: 3.0, Scale: 1,
			Description: "Combined translation and rotation",
		},
		"no_motion": {
			Name: "no_motion", Scale: 1,
			Description: "Stationary pattern (sanity check, expect zero flow)",
		},
		"translate_extreme": {
			Name: "translate_extreme", DX: 30.0, DY: 20.0, Scale: 1,
			Description: "Extreme motion (far beyond window size)",
		},
	}
}

// PatternNames returns the predefined pattern names in sorted order for
// deterministic iteration.
func PatternNames() []string {
	patterns := Patterns()
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GeneratePattern synthesizes one pattern's frame pair and writes the
// frames and ground-truth metadata under dir/<name>/.
func GeneratePattern(dir string, params models.MotionParameters, width, height int) error {
	frame0, frame1, err := pattern.GeneratePair(width, height, params)
	if err != nil {
		return err
	}

	patternDir := filepath.Join(dir, params.Name)
	if err := os.MkdirAll(patternDir, 0755); err != nil {
		return fmt.Errorf("error creating pattern directory: %w", err)
	}

	meta := buildMetadata(params, width, height)
	if err := writeJSON(filepath.Join(patternDir, MetadataFile), meta); err != nil {
		return err
	}

	for _, fr := range []struct {
		base string
		img  *frame.Frame
	}{
		{Frame0Base, frame0},
		{Frame1Base, frame1},
	} {
		if err := frame.WriteRaw(fr.img, filepath.Join(patternDir, fr.base+".bin")); err != nil {
			return fmt.Errorf("error writing %s frame: %w", params.Name, err)
		}
		if err := frame.WriteMem(fr.img, filepath.Join(patternDir, fr.base+".mem")); err != nil {
			return fmt.Errorf("error writing %s frame: %w", params.Name, err)
		}
		if err := frame.WritePNG(fr.img, filepath.Join(patternDir, fr.base+".png")); err != nil {
			return fmt.Errorf("error writing %s frame: %w", params.Name, err)
		}
	}
	return nil
}

// Generate builds the full predefined suite under dir and writes the
// suite index.
func Generate(dir string, width, height int) (*models.SuiteIndex, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating suite directory: %w", err)
	}

	patterns := Patterns()
	for _, name := range PatternNames() {
		if err := GeneratePattern(dir, patterns[name], width, height); err != nil {
			return nil, fmt.Errorf("generating pattern %q: %w", name, err)
		}
	}

	index := &models.SuiteIndex{
		SuiteName:   SuiteName,
		Resolution:  models.Resolution{Width: width, Height: height},
		NumPatterns: len(patterns),
		Patterns:    patterns,
	}
	if err := writeJSON(filepath.Join(dir, IndexFile), index); err != nil {
		return nil, err
	}
	return index, nil
}

// LoadIndex reads the suite index from dir.
func LoadIndex(dir string) (*models.SuiteIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("error reading suite index: %w", err)
	}
	index := &models.SuiteIndex{}
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("error parsing suite index: %w", err)
	}
	return index, nil
}

// Pattern is one loaded test case: the frame pair plus its ground truth.
type Pattern struct {
	Prev     *frame.Frame
	Curr     *frame.Frame
	Metadata *models.PatternMetadata
}

// LoadPattern reads one pattern's metadata and raw frames from
// dir/<name>/.
func LoadPattern(dir, name string) (*Pattern, error) {
	patternDir := filepath.Join(dir, name)

	data, err := os.ReadFile(filepath.Join(patternDir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("error reading pattern metadata: %w", err)
	}
	meta := &models.PatternMetadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("error parsing pattern metadata: %w", err)
	}

	w := meta.Resolution.Width
	h := meta.Resolution.Height
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("pattern %q resolution %dx%d: %w",
			name, w, h, flow.ErrInvalidParameter)
	}

	prev, err := frame.ReadRaw(filepath.Join(patternDir, Frame0Base+".bin"), w, h)
	if err != nil {
		return nil, fmt.Errorf("error reading pattern frame: %w", err)
	}
	curr, err := frame.ReadRaw(filepath.Join(patternDir, Frame1Base+".bin"), w, h)
	if err != nil {
		return nil, fmt.Errorf("error reading pattern frame: %w", err)
	}

	return &Pattern{Prev: prev, Curr: curr, Metadata: meta}, nil
}

func buildMetadata(params models.MotionParameters, width, height int) *models.PatternMetadata {
	constant := params.Rotation == 0 && params.Scale == 1
	expected := models.ExpectedFlow{Variable: !constant}
	if constant {
		expected.UMean = params.DX
		expected.VMean = params.DY
	} else {
		expected.UMean = "variable"
		expected.VMean = "variable"
		expected.Note = "For rotation/zoom, flow varies spatially. Use test regions."
	}
	return &models.PatternMetadata{
		PatternName:      params.Name,
		Description:      params.Description,
		Resolution:       models.Resolution{Width: width, Height: height},
		MotionParameters: params,
		ExpectedFlow:     expected,
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
