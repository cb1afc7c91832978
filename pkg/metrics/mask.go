// Package metrics implements the standard optical flow accuracy metrics
// (MAE, RMSE, EPE, AAE) against constant ground-truth motion, with
// optional pixel masks excluding regions where boundary effects dominate.
package metrics

// Mask selects the pixels that participate in a metric. A nil *Mask means
// every pixel participates.
type Mask struct {
	// Width and Height are the frame dimensions the mask applies to.
	Width, Height int

	valid []bool
}

// Full returns a mask covering every pixel.
func Full(width, height int) *Mask {
	m := &Mask{Width: width, Height: height, valid: make([]bool, width*height)}
	for i := range m.valid {
		m.valid[i] = true
	}
	return m
}

// ExcludeBorder returns a mask covering the frame interior, leaving out a
// margin of the given width on all four sides. Flow estimates inside the
// solver's border margin are pinned to zero, so including them penalizes
// every run by a constant amount unrelated to estimator quality.
func ExcludeBorder(width, height, margin int) *Mask {
	m := &Mask{Width: width, Height: height, valid: make([]bool, width*height)}
	for y := margin; y < height-margin; y++ {
		for x := margin; x < width-margin; x++ {
			m.valid[y*width+x] = true
		}
	}
	return m
}

// CenterCrop returns a mask covering a centered box holding the given
// fraction of each dimension, used for rotation and zoom patterns where
// the constant-flow approximation only holds near the motion center.
func CenterCrop(width, height int, fraction float64) *Mask {
	if fraction <= 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	cropW := int(float64(width) * fraction)
	cropH := int(float64(height) * fraction)
	x0 := (width - cropW) / 2
	y0 := (height - cropH) / 2

	m := &Mask{Width: width, Height: height, valid: make([]bool, width*height)}
	for y := y0; y < y0+cropH; y++ {
		for x := x0; x < x0+cropW; x++ {
			m.valid[y*width+x] = true
		}
	}
	return m
}

// CenterBox returns a mask covering a centered square box with the given
// side length in pixels. The box is clipped to the frame.
func CenterBox(width, height, size int) *Mask {
	half := size / 2
	x0 := width/2 - half
	y0 := height/2 - half
	x1 := width/2 + half
	y1 := height/2 + half
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > width {
		x1 = width
	}
	if y1 > height {
		y1 = height
	}

	m := &Mask{Width: width, Height: height, valid: make([]bool, width*height)}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.valid[y*width+x] = true
		}
	}
	return m
}

// Contains reports whether pixel (x, y) participates.
func (m *Mask) Contains(x, y int) bool {
	if m == nil {
		return true
	}
	return m.valid[y*m.Width+x]
}

// Count returns the number of participating pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.valid {
		if v {
			n++
		}
	}
	return n
}
