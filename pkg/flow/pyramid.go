package flow

import (
	"fmt"
	"math"

	"lkflow/pkg/frame"
)

// Pyramid is an ordered multi-resolution stack: index 0 is the coarsest
// level and the last index is the unmodified original frame.
type Pyramid []*frame.Frame

// DefaultScaleFactor halves each dimension per level.
const DefaultScaleFactor = 0.5

// BuildPyramid constructs a Gaussian pyramid with numLevels levels. Each
// coarser level is the previous one blurred with sigma = 1/scaleFactor
// (anti-aliasing before decimation) and bilinearly resampled to
// round(dim * scaleFactor) per axis. Construction is fully deterministic:
// identical inputs yield bit-for-bit identical pyramids.
func BuildPyramid(img *frame.Frame, numLevels int, scaleFactor float64) (Pyramid, error) {
	if numLevels < 1 {
		return nil, fmt.Errorf("pyramid needs at least 1 level, got %d: %w",
			numLevels, ErrInvalidParameter)
	}
	if scaleFactor <= 0 || scaleFactor >= 1 {
		return nil, fmt.Errorf("scale factor %g must be in (0, 1): %w",
			scaleFactor, ErrInvalidParameter)
	}

	pyramid := make(Pyramid, numLevels)
	current := img

	// Built fine to coarse, stored coarse to fine.
	for level := 0; level < numLevels; level++ {
		if level > 0 {
			sigma := 1.0 / scaleFactor
			smoothed := gaussianBlur(current, sigma)

			newW := int(math.Round(float64(current.Width) * scaleFactor))
			newH := int(math.Round(float64(current.Height) * scaleFactor))
			if newW < 1 || newH < 1 {
				return nil, fmt.Errorf("level %d would collapse below 1x1 for %dx%d input: %w",
					level, img.Width, img.Height, ErrInvalidParameter)
			}
			current = resampleBilinear(smoothed, newW, newH)
		}
		pyramid[numLevels-1-level] = current
	}

	return pyramid, nil
}

// gaussianBlur applies a separable Gaussian with symmetric boundary
// extension. The kernel radius is 4 sigma, mirroring the usual truncation
// of the tail.
func gaussianBlur(src *frame.Frame, sigma float64) *frame.Frame {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}

	taps := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range taps {
		d := float64(i - radius)
		taps[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += taps[i]
	}
	for i := range taps {
		taps[i] /= sum
	}

	w, h := src.Width, src.Height
	tmp := frame.New(w, h)
	dst := frame.New(w, h)

	for y := 0; y < h; y++ {
		row := src.Pix[y*w : (y+1)*w]
		out := tmp.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			acc := 0.0
			for k, t := range taps {
				acc += t * row[reflect(x+k-radius, w)]
			}
			out[x] = acc
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k, t := range taps {
				acc += t * tmp.Pix[reflect(y+k-radius, h)*w+x]
			}
			dst.Pix[y*w+x] = acc
		}
	}
	return dst
}

// resampleBilinear resizes a frame by sampling it at newW x newH positions
// spread evenly over [0, w-1] x [0, h-1]. Sample positions are always
// inside the source domain, so no fill value is involved.
func resampleBilinear(src *frame.Frame, newW, newH int) *frame.Frame {
	dst := frame.New(newW, newH)

	for y := 0; y < newH; y++ {
		srcY := gridCoord(y, newH, src.Height)
		for x := 0; x < newW; x++ {
			srcX := gridCoord(x, newW, src.Width)
			dst.Pix[y*newW+x] = sampleBilinear(src, srcX, srcY)
		}
	}
	return dst
}

// gridCoord maps output index i of n samples onto the source axis of length
// srcN, endpoints inclusive.
func gridCoord(i, n, srcN int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) * float64(srcN-1) / float64(n-1)
}

// sampleBilinear interpolates src at a fractional in-domain position.
func sampleBilinear(src *frame.Frame, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1

	if x1 >= src.Width {
		x1 = src.Width - 1
	}
	if y1 >= src.Height {
		y1 = src.Height - 1
	}

	fx := x - float64(x0)
	fy := y - float64(y0)

	top := (1-fx)*src.At(x0, y0) + fx*src.At(x1, y0)
	bottom := (1-fx)*src.At(x0, y1) + fx*src.At(x1, y1)
	return (1-fy)*top + fy*bottom
}
