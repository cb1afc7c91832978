package flow

import (
	"fmt"

	"lkflow/pkg/frame"
)

// Gradients holds the spatial and temporal derivatives of a frame pair.
// The three frames share one shape and are always produced and consumed
// together.
type Gradients struct {
	// Ix and Iy are the spatial derivatives of the pixel-wise average of
	// the two frames
	Ix *frame.Frame
	Iy *frame.Frame

	// It is the temporal derivative, prev - curr
	It *frame.Frame
}

// The 3x3 derivative taps below are the convolution (kernel-flipped) form of
// the Sobel pair normalized by 1/8, split into separable passes. The sign
// convention pairs with It = prev - curr so that the solved flow points from
// the previous frame toward the current one.
var (
	derivTaps  = [3]float64{1.0 / 8.0, 0, -1.0 / 8.0}
	smoothTaps = [3]float64{1, 2, 1}
)

// ComputeGradients produces (Ix, Iy, It) for a frame pair of identical
// shape. Spatial gradients come from convolving the derivative kernel
// against the average of the two frames with symmetric boundary extension,
// so the outputs keep the full input shape; the temporal gradient is a
// plain elementwise difference.
func ComputeGradients(prev, curr *frame.Frame) (*Gradients, error) {
	if !prev.SameShape(curr) {
		return nil, fmt.Errorf("gradient inputs %dx%d and %dx%d: %w",
			prev.Width, prev.Height, curr.Width, curr.Height, ErrShapeMismatch)
	}

	w, h := prev.Width, prev.Height

	// Averaging the frames before differentiation reduces noise in the
	// spatial terms.
	avg := frame.New(w, h)
	it := frame.New(w, h)
	for i := range avg.Pix {
		avg.Pix[i] = (prev.Pix[i] + curr.Pix[i]) / 2.0
		it.Pix[i] = prev.Pix[i] - curr.Pix[i]
	}

	ix := separableConv3(avg, derivTaps, smoothTaps)
	iy := separableConv3(avg, smoothTaps, derivTaps)

	return &Gradients{Ix: ix, Iy: iy, It: it}, nil
}

// SameShape reports whether the triple matches the given dimensions.
func (g *Gradients) SameShape(width, height int) bool {
	return g.Ix.Width == width && g.Ix.Height == height
}

// separableConv3 applies a 3-tap horizontal pass followed by a 3-tap
// vertical pass with symmetric (reflected-about-edge) extension. Symmetric
// extension is axis-separable, so the two passes equal the full 2D
// convolution with the outer-product kernel.
func separableConv3(src *frame.Frame, hTaps, vTaps [3]float64) *frame.Frame {
	w, h := src.Width, src.Height
	tmp := frame.New(w, h)
	dst := frame.New(w, h)

	for y := 0; y < h; y++ {
		row := src.Pix[y*w : (y+1)*w]
		out := tmp.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			out[x] = hTaps[0]*row[reflect(x-1, w)] +
				hTaps[1]*row[x] +
				hTaps[2]*row[reflect(x+1, w)]
		}
	}

	for y := 0; y < h; y++ {
		y0 := reflect(y-1, h)
		y2 := reflect(y+1, h)
		for x := 0; x < w; x++ {
			dst.Pix[y*w+x] = vTaps[0]*tmp.Pix[y0*w+x] +
				vTaps[1]*tmp.Pix[y*w+x] +
				vTaps[2]*tmp.Pix[y2*w+x]
		}
	}
	return dst
}

// reflect maps an index to the valid range [0, n) by mirroring about the
// array edge, duplicating the edge sample: -1 -> 0, n -> n-1.
func reflect(i, n int) int {
	if i < 0 {
		return -i - 1
	}
	if i >= n {
		return 2*n - i - 1
	}
	return i
}
