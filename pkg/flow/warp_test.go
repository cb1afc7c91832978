package flow

import (
	"errors"
	"math"
	"testing"

	"lkflow/pkg/frame"
)

// constantField builds a field with the same (u, v) at every pixel.
func constantField(width, height int, u, v float64) *Field {
	f := NewField(width, height)
	for i := range f.U.Pix {
		f.U.Pix[i] = u
		f.V.Pix[i] = v
	}
	return f
}

// TestWarpIntegerShift verifies that a constant one-pixel field samples
// the neighbor exactly
func TestWarpIntegerShift(t *testing.T) {
	w, h := 8, 6
	img := frame.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = float64(i)
	}

	warped, err := Warp(img, constantField(w, h, 1, 0), FillBlack)
	if err != nil {
		t.Fatalf("Warp failed: %v", err)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			if warped.At(x, y) != img.At(x+1, y) {
				t.Fatalf("Pixel (%d,%d): expected %f, got %f",
					x, y, img.At(x+1, y), warped.At(x, y))
			}
		}
		// Last column samples outside the frame.
		if warped.At(w-1, y) != FillBlack {
			t.Fatalf("Pixel (%d,%d): expected fill, got %f", w-1, y, warped.At(w-1, y))
		}
	}
}

// TestWarpFillValue verifies out-of-domain samples take the requested
// fill constant
func TestWarpFillValue(t *testing.T) {
	img := frame.New(4, 4)
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	warped, err := Warp(img, constantField(4, 4, 10, 10), FillMidGray)
	if err != nil {
		t.Fatalf("Warp failed: %v", err)
	}
	for i, v := range warped.Pix {
		if v != FillMidGray {
			t.Fatalf("Sample %d: expected mid-gray fill, got %f", i, v)
		}
	}
}

// TestWarpSubPixel verifies bilinear blending on a half-pixel shift
func TestWarpSubPixel(t *testing.T) {
	img := frame.New(4, 1)
	img.Set(0, 0, 0)
	img.Set(1, 0, 10)
	img.Set(2, 0, 20)
	img.Set(3, 0, 30)

	warped, err := Warp(img, constantField(4, 1, 0.5, 0), FillBlack)
	if err != nil {
		t.Fatalf("Warp failed: %v", err)
	}
	for x := 0; x < 3; x++ {
		want := (img.At(x, 0) + img.At(x+1, 0)) / 2
		if math.Abs(warped.At(x, 0)-want) > 1e-12 {
			t.Errorf("Pixel %d: expected %f, got %f", x, want, warped.At(x, 0))
		}
	}
}

// TestWarpShapeMismatch verifies the dimension check
func TestWarpShapeMismatch(t *testing.T) {
	img := frame.New(4, 4)
	_, err := Warp(img, NewField(5, 4), FillBlack)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

// TestUpsampleFieldMagnitude verifies doubling the resolution doubles the
// flow magnitudes
func TestUpsampleFieldMagnitude(t *testing.T) {
	coarse := constantField(8, 6, 1.5, -2.0)

	fine, err := UpsampleField(coarse, 16, 12)
	if err != nil {
		t.Fatalf("UpsampleField failed: %v", err)
	}
	if fine.Width() != 16 || fine.Height() != 12 {
		t.Fatalf("Expected 16x12 field, got %dx%d", fine.Width(), fine.Height())
	}

	for i := range fine.U.Pix {
		if math.Abs(fine.U.Pix[i]-3.0) > 1e-12 {
			t.Fatalf("U sample %d: expected 3.0, got %f", i, fine.U.Pix[i])
		}
		if math.Abs(fine.V.Pix[i]-(-4.0)) > 1e-12 {
			t.Fatalf("V sample %d: expected -4.0, got %f", i, fine.V.Pix[i])
		}
	}
}

// TestUpsampleFieldAnisotropic verifies per-axis scale factors are applied
// independently
func TestUpsampleFieldAnisotropic(t *testing.T) {
	coarse := constantField(10, 10, 1, 1)

	fine, err := UpsampleField(coarse, 30, 20)
	if err != nil {
		t.Fatalf("UpsampleField failed: %v", err)
	}
	if math.Abs(fine.U.Pix[0]-3.0) > 1e-12 {
		t.Errorf("U scale: expected 3.0, got %f", fine.U.Pix[0])
	}
	if math.Abs(fine.V.Pix[0]-2.0) > 1e-12 {
		t.Errorf("V scale: expected 2.0, got %f", fine.V.Pix[0])
	}
}

// TestUpsampleFieldInvalidTarget verifies target dimension validation
func TestUpsampleFieldInvalidTarget(t *testing.T) {
	_, err := UpsampleField(constantField(4, 4, 0, 0), 0, 8)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}
