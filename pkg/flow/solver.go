package flow

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"lkflow/pkg/frame"
)

// DefaultDetThreshold is the structure-tensor determinant magnitude below
// which a window is treated as under-textured and left at zero flow. The
// value is empirical; downstream accuracy thresholds were tuned against it,
// so changing the default will shift every report.
const DefaultDetThreshold = 1e-4

// SolveParams configures the windowed least-squares solver.
type SolveParams struct {
	// WindowSize is the side of the square analysis window. Must be odd
	// and at least 1.
	WindowSize int

	// DetThreshold overrides DefaultDetThreshold when positive.
	DetThreshold float64

	// NumWorkers bounds solver parallelism; zero or negative selects
	// runtime.NumCPU(). Output is deterministic regardless of the value
	// because workers own disjoint rows.
	NumWorkers int
}

func (p SolveParams) detThreshold() float64 {
	if p.DetThreshold > 0 {
		return p.DetThreshold
	}
	return DefaultDetThreshold
}

func (p SolveParams) workers() int {
	if p.NumWorkers > 0 {
		return p.NumWorkers
	}
	return runtime.NumCPU()
}

func (p SolveParams) validate() error {
	if p.WindowSize < 1 || p.WindowSize%2 == 0 {
		return fmt.Errorf("window size %d must be odd and positive: %w",
			p.WindowSize, ErrInvalidParameter)
	}
	return nil
}

// SolveWindowed computes dense flow from a gradient triple by solving the
// 2x2 structure-tensor system over each pixel's window. Only pixels whose
// window lies fully inside the frame are populated; the border margin of
// WindowSize/2 pixels stays exactly zero, as do pixels whose tensor
// determinant magnitude is at or below the threshold.
func SolveWindowed(g *Gradients, p SolveParams) (*Field, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if !g.Ix.SameShape(g.Iy) || !g.Ix.SameShape(g.It) {
		return nil, fmt.Errorf("gradient triple shapes disagree: %w", ErrShapeMismatch)
	}

	w, h := g.Ix.Width, g.Ix.Height
	field := NewField(w, h)

	half := p.WindowSize / 2
	if h <= 2*half || w <= 2*half {
		// No pixel has a fully interior window; the all-zero field is
		// the correct answer.
		return field, nil
	}

	threshold := p.detThreshold()

	rows := make(chan int)
	var wg sync.WaitGroup
	for worker := 0; worker < p.workers(); worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				solveRow(g, field, y, half, threshold)
			}
		}()
	}
	for y := half; y < h-half; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return field, nil
}

// solveRow populates one output row. Each worker writes only to its own
// rows, so no synchronization is needed beyond the final barrier.
func solveRow(g *Gradients, field *Field, y, half int, threshold float64) {
	w := g.Ix.Width

	for x := half; x < w-half; x++ {
		var sxx, syy, sxy, sxt, syt float64

		// Window sums over contiguous row segments.
		for wy := y - half; wy <= y+half; wy++ {
			start := wy*w + x - half
			end := wy*w + x + half + 1
			ixRow := g.Ix.Pix[start:end]
			iyRow := g.Iy.Pix[start:end]
			itRow := g.It.Pix[start:end]

			sxx += floats.Dot(ixRow, ixRow)
			syy += floats.Dot(iyRow, iyRow)
			sxy += floats.Dot(ixRow, iyRow)
			sxt += floats.Dot(ixRow, itRow)
			syt += floats.Dot(iyRow, itRow)
		}

		det := sxx*syy - sxy*sxy
		if math.Abs(det) <= threshold {
			// Under-textured or edge-aligned window; leave zero flow.
			continue
		}

		b0 := -sxt
		b1 := -syt
		field.U.Pix[y*w+x] = (syy*b0 - sxy*b1) / det
		field.V.Pix[y*w+x] = (sxx*b1 - sxy*b0) / det
	}
}

// EstimateSingleScale runs the full single-scale pipeline: gradients from
// the frame pair, then the windowed solve.
func EstimateSingleScale(prev, curr *frame.Frame, p SolveParams) (*Field, error) {
	grads, err := ComputeGradients(prev, curr)
	if err != nil {
		return nil, err
	}
	return SolveWindowed(grads, p)
}
