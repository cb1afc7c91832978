package flow

import (
	"fmt"

	"lkflow/pkg/frame"
)

// Default refinement parameters. Convergence is measured as the mean
// absolute residual update per component, in pixels at the current level.
const (
	DefaultNumLevels            = 3
	DefaultNumIterations        = 3
	DefaultConvergenceThreshold = 0.01
)

// ProgressEvent reports the state of the pyramidal estimator after one
// refinement iteration. Level 0 is the coarsest pyramid level.
type ProgressEvent struct {
	// Level is the pyramid level being refined.
	Level int
	// NumLevels is the total number of pyramid levels.
	NumLevels int
	// Iteration is the completed iteration within the level, starting at 1.
	Iteration int
	// NumIterations is the iteration budget per level.
	NumIterations int
	// Width and Height are the frame dimensions at this level.
	Width, Height int
	// MeanDU and MeanDV are the mean absolute residual updates from the
	// completed iteration.
	MeanDU, MeanDV float64
	// Converged is true when both residual means fell below the
	// convergence threshold, ending the level early.
	Converged bool
}

// ProgressFunc receives refinement progress. A nil ProgressFunc disables
// reporting.
type ProgressFunc func(ProgressEvent)

// PyramidParams configures the coarse-to-fine estimator.
type PyramidParams struct {
	// NumLevels is the number of pyramid levels. 1 reduces the estimator
	// to a single-scale solve. Defaults to DefaultNumLevels when zero.
	NumLevels int
	// ScaleFactor is the per-level downscale ratio in (0, 1). Defaults to
	// DefaultScaleFactor when zero.
	ScaleFactor float64
	// NumIterations is the refinement iteration budget per level.
	// Defaults to DefaultNumIterations when zero.
	NumIterations int
	// ConvergenceThreshold ends a level early once the mean absolute
	// residual update of both components falls below it. Defaults to
	// DefaultConvergenceThreshold when zero.
	ConvergenceThreshold float64
	// Solve configures the per-level windowed least-squares solver.
	Solve SolveParams
	// Progress, when non-nil, receives an event after every iteration.
	Progress ProgressFunc
}

func (p *PyramidParams) numLevels() int {
	if p.NumLevels == 0 {
		return DefaultNumLevels
	}
	return p.NumLevels
}

func (p *PyramidParams) scaleFactor() float64 {
	if p.ScaleFactor == 0 {
		return DefaultScaleFactor
	}
	return p.ScaleFactor
}

func (p *PyramidParams) numIterations() int {
	if p.NumIterations == 0 {
		return DefaultNumIterations
	}
	return p.NumIterations
}

func (p *PyramidParams) convergenceThreshold() float64 {
	if p.ConvergenceThreshold == 0 {
		return DefaultConvergenceThreshold
	}
	return p.ConvergenceThreshold
}

// EstimatePyramidal computes dense optical flow from prev to curr with
// coarse-to-fine Lucas-Kanade refinement. Both frames are decomposed into
// Gaussian pyramids; the flow estimated at each level is upsampled to seed
// the next finer level, where the current frame is warped back by the
// accumulated estimate and a residual solve updates it. The returned field
// has the full input resolution.
func EstimatePyramidal(prev, curr *frame.Frame, params PyramidParams) (*Field, error) {
	if !prev.SameShape(curr) {
		return nil, fmt.Errorf("pyramidal estimate: frames %dx%d vs %dx%d: %w",
			prev.Width, prev.Height, curr.Width, curr.Height, ErrShapeMismatch)
	}
	if params.NumIterations < 0 {
		return nil, fmt.Errorf("iterations %d must not be negative: %w",
			params.NumIterations, ErrInvalidParameter)
	}
	if err := params.Solve.validate(); err != nil {
		return nil, err
	}

	numLevels := params.numLevels()
	prevPyr, err := BuildPyramid(prev, numLevels, params.scaleFactor())
	if err != nil {
		return nil, fmt.Errorf("building pyramid for previous frame: %w", err)
	}
	currPyr, err := BuildPyramid(curr, numLevels, params.scaleFactor())
	if err != nil {
		return nil, fmt.Errorf("building pyramid for current frame: %w", err)
	}

	threshold := params.convergenceThreshold()
	iterations := params.numIterations()

	var field *Field
	for level := 0; level < numLevels; level++ {
		levelPrev := prevPyr[level]
		levelCurr := currPyr[level]
		w, h := levelPrev.Width, levelPrev.Height

		if field == nil {
			field = NewField(w, h)
		} else {
			field, err = UpsampleField(field, w, h)
			if err != nil {
				return nil, fmt.Errorf("upsampling flow to level %d: %w", level, err)
			}
		}

		for iter := 1; iter <= iterations; iter++ {
			// Warping the current frame back along the accumulated flow
			// compensates for the motion found so far; the solve then
			// recovers only the residual.
			warped, err := Warp(levelCurr, field, FillBlack)
			if err != nil {
				return nil, fmt.Errorf("warping level %d: %w", level, err)
			}
			delta, err := EstimateSingleScale(levelPrev, warped, params.Solve)
			if err != nil {
				return nil, fmt.Errorf("solving level %d iteration %d: %w", level, iter, err)
			}
			if err := field.Add(delta); err != nil {
				return nil, fmt.Errorf("accumulating level %d residual: %w", level, err)
			}

			meanDU := meanAbs(delta.U.Pix)
			meanDV := meanAbs(delta.V.Pix)
			converged := meanDU < threshold && meanDV < threshold

			if params.Progress != nil {
				params.Progress(ProgressEvent{
					Level:         level,
					NumLevels:     numLevels,
					Iteration:     iter,
					NumIterations: iterations,
					Width:         w,
					Height:        h,
					MeanDU:        meanDU,
					MeanDV:        meanDV,
					Converged:     converged,
				})
			}
			if converged {
				break
			}
		}
	}
	return field, nil
}
