// Package frame provides the single-channel intensity image used throughout
// the flow pipeline. Samples are stored as float64 for computation; the
// 8-bit form exists only for storage and interchange, and conversion between
// the two is a plain widening cast.
package frame

import "fmt"

// Frame is a fixed-size 2D grid of intensity samples in row-major order.
// Dimensions are set at construction and never change; code that receives a
// Frame treats it as read-only unless it created it.
type Frame struct {
	// Width and Height are the frame dimensions in pixels
	Width  int
	Height int

	// Pix holds Width*Height samples, Pix[y*Width+x]
	Pix []float64
}

// New creates a zero-filled frame of the given dimensions.
func New(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// FromBytes widens raw 8-bit samples into a float frame. The byte slice must
// hold exactly width*height samples in row-major order.
func FromBytes(data []byte, width, height int) (*Frame, error) {
	if len(data) != width*height {
		return nil, fmt.Errorf("frame data is %d bytes, expected %dx%d=%d",
			len(data), width, height, width*height)
	}

	f := New(width, height)
	for i, b := range data {
		f.Pix[i] = float64(b)
	}
	return f, nil
}

// At returns the sample at (x, y). No bounds checking beyond the slice's own.
func (f *Frame) At(x, y int) float64 {
	return f.Pix[y*f.Width+x]
}

// Set stores a sample at (x, y).
func (f *Frame) Set(x, y int, v float64) {
	f.Pix[y*f.Width+x] = v
}

// SameShape reports whether two frames have identical dimensions.
func (f *Frame) SameShape(other *Frame) bool {
	return f.Width == other.Width && f.Height == other.Height
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := New(f.Width, f.Height)
	copy(out.Pix, f.Pix)
	return out
}

// Bytes narrows the frame back to 8-bit samples, clamping to [0, 255].
func (f *Frame) Bytes() []byte {
	out := make([]byte, len(f.Pix))
	for i, v := range f.Pix {
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 255:
			out[i] = 255
		default:
			out[i] = byte(v + 0.5)
		}
	}
	return out
}
