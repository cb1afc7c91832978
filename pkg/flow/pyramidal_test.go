package flow

import (
	"errors"
	"math"
	"testing"

	"lkflow/pkg/frame"
)

// maeAgainst returns the mean absolute error of each component against a
// constant ground truth over the frame interior.
func maeAgainst(f *Field, uTrue, vTrue float64, margin int) (float64, float64) {
	w, h := f.Width(), f.Height()
	var sumU, sumV float64
	n := 0
	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			sumU += math.Abs(f.U.At(x, y) - uTrue)
			sumV += math.Abs(f.V.At(x, y) - vTrue)
			n++
		}
	}
	return sumU / float64(n), sumV / float64(n)
}

// TestEstimatePyramidalShapeMismatch verifies the dimension check
func TestEstimatePyramidalShapeMismatch(t *testing.T) {
	a := frame.New(32, 32)
	b := frame.New(32, 24)

	_, err := EstimatePyramidal(a, b, PyramidParams{Solve: SolveParams{WindowSize: 5}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

// TestEstimatePyramidalOutputResolution verifies the returned field has
// the full input resolution
func TestEstimatePyramidalOutputResolution(t *testing.T) {
	prev := synthTexture(80, 60, 0, 0)
	curr := synthTexture(80, 60, 1, 0)

	field, err := EstimatePyramidal(prev, curr, PyramidParams{
		NumLevels: 3,
		Solve:     SolveParams{WindowSize: 9},
	})
	if err != nil {
		t.Fatalf("EstimatePyramidal failed: %v", err)
	}
	if field.Width() != 80 || field.Height() != 60 {
		t.Errorf("Expected 80x60 field, got %dx%d", field.Width(), field.Height())
	}
}

// TestPyramidalBeatsSingleScaleOnLargeMotion verifies the point of the
// pyramid: a displacement far beyond the window radius is recovered much
// better coarse-to-fine than in one pass
func TestPyramidalBeatsSingleScaleOnLargeMotion(t *testing.T) {
	w, h := 160, 120
	shift := 12.0
	prev := synthTexture(w, h, 0, 0)
	curr := synthTexture(w, h, shift, 0)

	solve := SolveParams{WindowSize: 9}

	single, err := EstimateSingleScale(prev, curr, solve)
	if err != nil {
		t.Fatalf("EstimateSingleScale failed: %v", err)
	}
	pyramidal, err := EstimatePyramidal(prev, curr, PyramidParams{
		NumLevels:     3,
		NumIterations: 3,
		Solve:         solve,
	})
	if err != nil {
		t.Fatalf("EstimatePyramidal failed: %v", err)
	}

	margin := 15
	singleMAE, _ := maeAgainst(single, shift, 0, margin)
	pyrMAE, _ := maeAgainst(pyramidal, shift, 0, margin)

	if pyrMAE >= singleMAE {
		t.Errorf("Pyramidal MAE %f not better than single-scale MAE %f on %gpx motion",
			pyrMAE, singleMAE, shift)
	}
	// Single-scale cannot see 12px with a 9px window; its error should be
	// near the full displacement while the pyramid gets much closer.
	if pyrMAE > shift/2 {
		t.Errorf("Pyramidal MAE %f too large for %gpx motion", pyrMAE, shift)
	}
}

// TestPyramidalProgressEvents verifies the callback fires for every
// iteration with consistent level/iteration bookkeeping
func TestPyramidalProgressEvents(t *testing.T) {
	prev := synthTexture(64, 48, 0, 0)
	curr := synthTexture(64, 48, 2, 1)

	var events []ProgressEvent
	_, err := EstimatePyramidal(prev, curr, PyramidParams{
		NumLevels:     2,
		NumIterations: 2,
		Solve:         SolveParams{WindowSize: 9},
		Progress:      func(ev ProgressEvent) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatalf("EstimatePyramidal failed: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("No progress events delivered")
	}
	lastLevel := -1
	for _, ev := range events {
		if ev.NumLevels != 2 || ev.NumIterations != 2 {
			t.Fatalf("Event carries wrong totals: %+v", ev)
		}
		if ev.Level < lastLevel {
			t.Fatalf("Levels went backwards: %+v", ev)
		}
		if ev.Iteration < 1 || ev.Iteration > 2 {
			t.Fatalf("Iteration out of range: %+v", ev)
		}
		lastLevel = ev.Level
	}
	if lastLevel != 1 {
		t.Errorf("Expected final events at level 1, got %d", lastLevel)
	}
}

// TestPyramidalConvergesEarlyOnNoMotion verifies the early exit: with
// identical frames the first iteration of each level reports convergence
func TestPyramidalConvergesEarlyOnNoMotion(t *testing.T) {
	f := synthTexture(64, 48, 0, 0)

	var events []ProgressEvent
	field, err := EstimatePyramidal(f, f.Clone(), PyramidParams{
		NumLevels:     2,
		NumIterations: 5,
		Solve:         SolveParams{WindowSize: 9},
		Progress:      func(ev ProgressEvent) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatalf("EstimatePyramidal failed: %v", err)
	}

	// One converged event per level, nothing more.
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if !ev.Converged || ev.Iteration != 1 {
			t.Errorf("Expected first-iteration convergence, got %+v", ev)
		}
	}

	for i := range field.U.Pix {
		if field.U.Pix[i] != 0 || field.V.Pix[i] != 0 {
			t.Fatalf("No-motion pair produced non-zero flow at sample %d", i)
		}
	}
}

// TestPyramidalSingleLevelMatchesSingleScale verifies a one-level pyramid
// with one iteration reduces to the single-scale estimator
func TestPyramidalSingleLevelMatchesSingleScale(t *testing.T) {
	prev := synthTexture(48, 36, 0, 0)
	curr := synthTexture(48, 36, 0.5, 0.5)

	solve := SolveParams{WindowSize: 9}
	single, err := EstimateSingleScale(prev, curr, solve)
	if err != nil {
		t.Fatalf("EstimateSingleScale failed: %v", err)
	}
	pyr, err := EstimatePyramidal(prev, curr, PyramidParams{
		NumLevels:     1,
		NumIterations: 1,
		Solve:         solve,
	})
	if err != nil {
		t.Fatalf("EstimatePyramidal failed: %v", err)
	}

	for i := range single.U.Pix {
		if math.Abs(single.U.Pix[i]-pyr.U.Pix[i]) > 1e-12 ||
			math.Abs(single.V.Pix[i]-pyr.V.Pix[i]) > 1e-12 {
			t.Fatalf("Single-level pyramid differs from single scale at sample %d", i)
		}
	}
}
