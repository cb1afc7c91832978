// Package pattern generates synthetic grayscale frame pairs with known
// ground-truth motion for verifying optical flow estimators. Motion is
// synthesized with the same bilinear warper the estimator itself uses, so
// generated displacements are sub-pixel accurate.
package pattern

import (
	"fmt"
	"math"

	"lkflow/internal/models"
	"lkflow/pkg/flow"
	"lkflow/pkg/frame"
)

// Default moving-square geometry.
const (
	DefaultSquareSize = 40
	DefaultSquareX    = 50
	DefaultSquareY    = 50
)

// MovingSquare returns two frames showing a white square on a black
// background displaced by (dx, dy) whole pixels between them. The square
// interior is textureless, so a correct estimator only recovers motion
// near its edges; the pattern exists to sanity-check gradient signs and
// displacement direction, not accuracy.
func MovingSquare(width, height, size, posX, posY, dx, dy int) (*frame.Frame, *frame.Frame) {
	frame0 := frame.New(width, height)
	frame1 := frame.New(width, height)
	fillSquare(frame0, posX, posY, size)
	fillSquare(frame1, posX+dx, posY+dy, size)
	return frame0, frame1
}

func fillSquare(f *frame.Frame, posX, posY, size int) {
	for y := posY; y < posY+size; y++ {
		if y < 0 || y >= f.Height {
			continue
		}
		for x := posX; x < posX+size; x++ {
			if x < 0 || x >= f.Width {
				continue
			}
			f.Set(x, y, 255)
		}
	}
}

// SmoothSynthetic returns a richly textured frame built from a sum of
// sinusoids, spanning four horizontal and three vertical periods across
// the frame. Every pixel carries non-zero gradient in both axes, which
// makes the texture well conditioned for windowed least squares
// everywhere. Samples are quantized to 8-bit levels so frames survive a
// byte round trip unchanged.
func SmoothSynthetic(width, height int) *frame.Frame {
	f := frame.New(width, height)
	for j := 0; j < height; j++ {
		y := gridSpan(j, height, 3*math.Pi)
		for i := 0; i < width; i++ {
			x := gridSpan(i, width, 4*math.Pi)
			v := 128 +
				50*math.Sin(x)*math.Cos(y) +
				30*math.Cos(2*x+0.5)*math.Sin(1.5*y) +
				20*math.Sin(3*x-0.3)*math.Cos(2.5*y+0.7)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			f.Set(i, j, math.Trunc(v))
		}
	}
	return f
}

// gridSpan maps index i of an n-point grid onto [0, span], endpoints
// included.
func gridSpan(i, n int, span float64) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) * span / float64(n-1)
}

// Translate shifts a frame by a possibly fractional displacement using
// bilinear interpolation, filling uncovered border pixels with mid-gray.
func Translate(src *frame.Frame, dx, dy float64) (*frame.Frame, error) {
	return ApplyMotion(src, models.MotionParameters{DX: dx, DY: dy, Scale: 1})
}

// ApplyMotion warps a frame by the affine motion the parameters describe:
// zoom about the frame center, then rotation about the center
// (counter-clockwise, degrees), then translation. Uncovered pixels are
// filled with mid-gray so synthetic frame borders resemble natural image
// content rather than hard black edges.
//
// The returned frame is frame 1 of a test pair whose frame 0 is src; the
// ground-truth flow at source point p is M·p − p for the forward affine
// map M.
func ApplyMotion(src *frame.Frame, params models.MotionParameters) (*frame.Frame, error) {
	scale := params.Scale
	if scale == 0 {
		scale = 1
	}

	theta := params.Rotation * math.Pi / 180
	alpha := scale * math.Cos(theta)
	beta := scale * math.Sin(theta)
	det := alpha*alpha + beta*beta
	if det == 0 {
		return nil, fmt.Errorf("degenerate affine motion scale=%g rotation=%g: %w",
			params.Scale, params.Rotation, flow.ErrInvalidParameter)
	}

	cx := float64(src.Width) / 2
	cy := float64(src.Height) / 2
	tx := (1-alpha)*cx - beta*cy + params.DX
	ty := beta*cx + (1-alpha)*cy + params.DY

	// The warper pulls samples from the source, so each output pixel
	// needs the inverse map: p_src = A^-1 (p_dst - t).
	field := flow.NewField(src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			px := float64(x) - tx
			py := float64(y) - ty
			sx := (alpha*px - beta*py) / det
			sy := (beta*px + alpha*py) / det
			field.U.Set(x, y, sx-float64(x))
			field.V.Set(x, y, sy-float64(y))
		}
	}

	return flow.Warp(src, field, flow.FillMidGray)
}

// GeneratePair builds a frame pair for one named motion: the smooth
// synthetic base texture and its transformed counterpart.
func GeneratePair(width, height int, params models.MotionParameters) (*frame.Frame, *frame.Frame, error) {
	frame0 := SmoothSynthetic(width, height)
	frame1, err := ApplyMotion(frame0, params)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesizing motion %q: %w", params.Name, err)
	}
	return frame0, frame1, nil
}
