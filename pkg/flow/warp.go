package flow

import (
	"fmt"
	"math"

	"lkflow/pkg/frame"
)

// Fill values for samples that land outside the source frame during a warp.
// Refinement warps use black; motion synthesis uses mid-gray so synthetic
// frame borders resemble natural image content.
const (
	FillBlack   = 0.0
	FillMidGray = 128.0
)

// Warp resamples img through the flow field: output pixel (x, y) takes the
// bilinearly interpolated value of img at (x+u, y+v). Moving the image
// forward along the flow compensates for the estimated motion, which is
// what lets pyramidal refinement solve for a residual instead of the full
// displacement.
func Warp(img *frame.Frame, field *Field, fill float64) (*frame.Frame, error) {
	if !img.SameShape(field.U) {
		return nil, fmt.Errorf("warp image %dx%d vs field %dx%d: %w",
			img.Width, img.Height, field.Width(), field.Height(), ErrShapeMismatch)
	}

	w, h := img.Width, img.Height
	out := frame.New(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := float64(x) + field.U.At(x, y)
			sy := float64(y) + field.V.At(x, y)

			if sx < 0 || sy < 0 || sx > float64(w-1) || sy > float64(h-1) {
				out.Pix[y*w+x] = fill
				continue
			}
			out.Pix[y*w+x] = sampleBilinear(img, sx, sy)
		}
	}
	return out, nil
}

// UpsampleField resizes a flow field to the target dimensions by bilinear
// interpolation of each component, then rescales the component magnitudes
// by targetDim/coarseDim per axis. Flow is a displacement measured in
// pixels, so the values must grow with the resolution, not just the
// sampling grid; skipping the rescale is a correctness bug.
func UpsampleField(field *Field, targetWidth, targetHeight int) (*Field, error) {
	if targetWidth < 1 || targetHeight < 1 {
		return nil, fmt.Errorf("upsample target %dx%d: %w",
			targetWidth, targetHeight, ErrInvalidParameter)
	}

	scaleX := float64(targetWidth) / float64(field.Width())
	scaleY := float64(targetHeight) / float64(field.Height())

	out := &Field{
		U: resampleBilinear(field.U, targetWidth, targetHeight),
		V: resampleBilinear(field.V, targetWidth, targetHeight),
	}
	for i := range out.U.Pix {
		out.U.Pix[i] *= scaleX
		out.V.Pix[i] *= scaleY
	}
	return out, nil
}

// meanAbs is the mean absolute value of a sample slice, used for the
// residual convergence check.
func meanAbs(pix []float64) float64 {
	if len(pix) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range pix {
		sum += math.Abs(v)
	}
	return sum / float64(len(pix))
}
