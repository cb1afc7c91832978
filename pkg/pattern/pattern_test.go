package pattern

import (
	"math"
	"testing"

	"lkflow/internal/models"
)

// TestMovingSquare verifies square placement in both frames
func TestMovingSquare(t *testing.T) {
	frame0, frame1 := MovingSquare(64, 48, 10, 20, 15, 3, -2)

	if frame0.At(20, 15) != 255 || frame0.At(29, 24) != 255 {
		t.Error("Square missing from frame 0")
	}
	if frame0.At(19, 15) != 0 || frame0.At(30, 24) != 0 {
		t.Error("Frame 0 square leaks outside its bounds")
	}

	if frame1.At(23, 13) != 255 || frame1.At(32, 22) != 255 {
		t.Error("Square not displaced in frame 1")
	}
	if frame1.At(20, 15) != 0 {
		t.Error("Frame 1 square still covers its frame 0 origin")
	}
}

// TestMovingSquareClipping verifies squares partially outside the frame
// are clipped rather than wrapped
func TestMovingSquareClipping(t *testing.T) {
	frame0, frame1 := MovingSquare(32, 32, 10, 28, 28, 10, 10)

	if frame0.At(31, 31) != 255 {
		t.Error("Clipped square corner missing")
	}
	for i, v := range frame1.Pix {
		if v != 0 {
			t.Fatalf("Fully off-frame square wrote sample %d", i)
		}
	}
}

// TestSmoothSyntheticProperties verifies the texture is byte-quantized,
// in range, and non-constant in both axes
func TestSmoothSyntheticProperties(t *testing.T) {
	f := SmoothSynthetic(64, 48)

	for i, v := range f.Pix {
		if v < 0 || v > 255 {
			t.Fatalf("Sample %d out of range: %f", i, v)
		}
		if v != math.Trunc(v) {
			t.Fatalf("Sample %d not quantized: %f", i, v)
		}
	}

	rowVaries, colVaries := false, false
	for x := 1; x < f.Width; x++ {
		if f.At(x, 10) != f.At(x-1, 10) {
			rowVaries = true
			break
		}
	}
	for y := 1; y < f.Height; y++ {
		if f.At(20, y) != f.At(20, y-1) {
			colVaries = true
			break
		}
	}
	if !rowVaries || !colVaries {
		t.Error("Texture is constant along an axis")
	}
}

// TestSmoothSyntheticDeterministic verifies repeated generation is
// bit-for-bit identical
func TestSmoothSyntheticDeterministic(t *testing.T) {
	a := SmoothSynthetic(32, 24)
	b := SmoothSynthetic(32, 24)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("Texture differs at sample %d", i)
		}
	}
}

// TestApplyMotionIdentity verifies zero motion reproduces the input
// exactly: every sample lands on an integer grid position
func TestApplyMotionIdentity(t *testing.T) {
	src := SmoothSynthetic(40, 30)

	out, err := ApplyMotion(src, models.MotionParameters{Scale: 1})
	if err != nil {
		t.Fatalf("ApplyMotion failed: %v", err)
	}
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("Identity motion changed sample %d: %f -> %f",
				i, src.Pix[i], out.Pix[i])
		}
	}
}

// TestApplyMotionTranslation verifies a pure integer translation moves
// the texture by exactly the requested offset
func TestApplyMotionTranslation(t *testing.T) {
	src := SmoothSynthetic(40, 30)

	out, err := Translate(src, 3, 2)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	// The pattern moves forward by (3, 2): out(x, y) = src(x-3, y-2).
	for y := 2; y < 30; y++ {
		for x := 3; x < 40; x++ {
			if out.At(x, y) != src.At(x-3, y-2) {
				t.Fatalf("Pixel (%d,%d): expected %f, got %f",
					x, y, src.At(x-3, y-2), out.At(x, y))
			}
		}
	}

	// Uncovered border is mid-gray.
	if out.At(0, 0) != 128 {
		t.Errorf("Expected mid-gray fill at origin, got %f", out.At(0, 0))
	}
}

// TestApplyMotionRotationCenter verifies rotation happens about the
// frame center: pixels near the center barely change while the frame as
// a whole visibly moves
func TestApplyMotionRotationCenter(t *testing.T) {
	src := SmoothSynthetic(41, 31)

	out, err := ApplyMotion(src, models.MotionParameters{Rotation: 10, Scale: 1})
	if err != nil {
		t.Fatalf("ApplyMotion failed: %v", err)
	}

	// The rotation center is (20.5, 15.5); the nearest pixel sits ~0.7px
	// away and moves a fraction of a pixel under a 10 degree turn.
	centerDelta := math.Abs(out.At(20, 15) - src.At(20, 15))
	if centerDelta > 10 {
		t.Errorf("Center pixel changed by %f under rotation about the center", centerDelta)
	}

	total := 0.0
	for i := range src.Pix {
		total += math.Abs(out.Pix[i] - src.Pix[i])
	}
	if total/float64(len(src.Pix)) < 1 {
		t.Error("Rotation left the frame essentially unchanged")
	}
}

// TestGeneratePair verifies the pair generator produces matching shapes
// and applies the motion
func TestGeneratePair(t *testing.T) {
	params := models.MotionParameters{Name: "test", DX: 2, Scale: 1}
	frame0, frame1, err := GeneratePair(48, 36, params)
	if err != nil {
		t.Fatalf("GeneratePair failed: %v", err)
	}
	if !frame0.SameShape(frame1) {
		t.Fatal("Frame pair shapes disagree")
	}

	if frame1.At(20, 18) != frame0.At(18, 18) {
		t.Errorf("Expected frame 1 to be frame 0 shifted by 2 pixels")
	}
}
