package models

// MotionParameters holds the ground-truth motion applied to a test pattern.
// The flow solver only estimates per-pixel translation, so Rotation and
// Scale are inputs to pattern synthesis rather than quantities the solver
// recovers; verification of those patterns is restricted to a center region
// where the flow is approximately constant.
type MotionParameters struct {
	// Name identifies the pattern (e.g. "translate_medium")
	Name string `json:"name"`

	// DX is the horizontal translation in pixels
	DX float64 `json:"dx"`

	// DY is the vertical translation in pixels
	DY float64 `json:"dy"`

	// Rotation is the rotation angle in degrees, counter-clockwise,
	// about the frame center
	Rotation float64 `json:"rotation"`

	// Scale is the zoom factor (1.0 = no zoom)
	Scale float64 `json:"scale"`

	// Description is a human-readable summary of what the pattern exercises
	Description string `json:"description"`
}

// Resolution is the frame size of a pattern or suite in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ExpectedFlow records the mean flow a correct estimator should report for
// a pattern. For rotation and zoom patterns the flow varies spatially, so
// the per-component means are marked variable and consumers fall back to
// the test-region convention.
type ExpectedFlow struct {
	UMean    any    `json:"u_mean"`
	VMean    any    `json:"v_mean"`
	Note     string `json:"note,omitempty"`
	Variable bool   `json:"-"`
}

// PatternMetadata is the metadata.json record stored next to each pattern's
// frame pair. The flow core only consumes DX/DY from MotionParameters as the
// constant ground-truth vector for metric evaluation.
type PatternMetadata struct {
	PatternName      string           `json:"pattern_name"`
	Description      string           `json:"description"`
	Resolution       Resolution       `json:"resolution"`
	MotionParameters MotionParameters `json:"motion_parameters"`
	ExpectedFlow     ExpectedFlow     `json:"expected_flow"`
}

// SuiteIndex is the suite_index.json record describing a generated test
// suite: which patterns it contains and at what resolution.
type SuiteIndex struct {
	SuiteName   string                      `json:"suite_name"`
	Resolution  Resolution                  `json:"resolution"`
	NumPatterns int                         `json:"num_patterns"`
	Patterns    map[string]MotionParameters `json:"patterns"`
}
