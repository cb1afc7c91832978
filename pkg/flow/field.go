package flow

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lkflow/pkg/frame"
)

// Field is a dense 2D flow field: one frame per motion component, in pixels.
// It acts as a mutable accumulator during pyramidal refinement and is
// treated as immutable once returned to the caller.
type Field struct {
	U *frame.Frame
	V *frame.Frame
}

// NewField creates a zero-initialized flow field of the given dimensions.
func NewField(width, height int) *Field {
	return &Field{
		U: frame.New(width, height),
		V: frame.New(width, height),
	}
}

// Width returns the field width in pixels.
func (f *Field) Width() int { return f.U.Width }

// Height returns the field height in pixels.
func (f *Field) Height() int { return f.U.Height }

// SameShape reports whether two fields have identical dimensions.
func (f *Field) SameShape(other *Field) bool {
	return f.U.SameShape(other.U)
}

// Add accumulates a residual field into f in place.
func (f *Field) Add(residual *Field) error {
	if !f.SameShape(residual) {
		return fmt.Errorf("cannot accumulate %dx%d residual into %dx%d field: %w",
			residual.Width(), residual.Height(), f.Width(), f.Height(), ErrShapeMismatch)
	}
	for i := range f.U.Pix {
		f.U.Pix[i] += residual.U.Pix[i]
		f.V.Pix[i] += residual.V.Pix[i]
	}
	return nil
}

// TestRegion is a rectangle of pixels, inclusive of min and exclusive of
// max, carried in flow-field text headers to mark where ground truth holds.
type TestRegion struct {
	XMin, XMax int
	YMin, YMax int
}

// WriteText exports the field in the text interchange format: comment lines
// carrying the image size and an optional test region, followed by one
// "x y u v" line per pixel in row-major order with six-decimal components.
func WriteText(w io.Writer, f *Field, region *TestRegion) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Optical flow field data\n")
	fmt.Fprintf(bw, "# Format: x y u v\n")
	fmt.Fprintf(bw, "# Image size: %dx%d\n", f.Width(), f.Height())
	if region != nil {
		fmt.Fprintf(bw, "# Test region: x[%d:%d], y[%d:%d]\n",
			region.XMin, region.XMax, region.YMin, region.YMax)
	}

	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			fmt.Fprintf(bw, "%d %d %.6f %.6f\n", x, y, f.U.At(x, y), f.V.At(x, y))
		}
	}
	return bw.Flush()
}

// ReadText parses the text interchange format. Comment lines are tolerated
// anywhere before data rows; the image-size header must appear before the
// first data row so the field can be allocated. The test region is returned
// when present, nil otherwise.
func ReadText(r io.Reader) (*Field, *TestRegion, error) {
	var (
		field  *Field
		region *TestRegion
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if w, h, ok := parseSizeComment(line); ok {
				field = NewField(w, h)
			}
			if tr, ok := parseRegionComment(line); ok {
				region = tr
			}
			continue
		}

		if field == nil {
			return nil, nil, fmt.Errorf("flow text data before image size header: %w", ErrMissingInput)
		}

		parts := strings.Fields(line)
		if len(parts) != 4 {
			return nil, nil, fmt.Errorf("malformed flow text row %q", line)
		}
		x, err1 := strconv.Atoi(parts[0])
		y, err2 := strconv.Atoi(parts[1])
		u, err3 := strconv.ParseFloat(parts[2], 64)
		v, err4 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, nil, fmt.Errorf("malformed flow text row %q", line)
		}
		if x < 0 || x >= field.Width() || y < 0 || y >= field.Height() {
			return nil, nil, fmt.Errorf("flow text coordinate (%d,%d) outside %dx%d frame",
				x, y, field.Width(), field.Height())
		}
		field.U.Set(x, y, u)
		field.V.Set(x, y, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read flow text: %w", err)
	}
	if field == nil {
		return nil, nil, fmt.Errorf("flow text has no image size header: %w", ErrMissingInput)
	}
	return field, region, nil
}

// parseSizeComment extracts dimensions from "# Image size: WxH".
func parseSizeComment(line string) (int, int, bool) {
	idx := strings.Index(line, "Image size:")
	if idx < 0 {
		return 0, 0, false
	}
	dims := strings.TrimSpace(line[idx+len("Image size:"):])
	parts := strings.SplitN(dims, "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// parseRegionComment extracts the rectangle from
// "# Test region: x[min:max], y[min:max]".
func parseRegionComment(line string) (*TestRegion, bool) {
	if !strings.Contains(line, "Test region:") {
		return nil, false
	}
	xMin, xMax, ok := parseRange(line, "x[")
	if !ok {
		return nil, false
	}
	yMin, yMax, ok := parseRange(line, "y[")
	if !ok {
		return nil, false
	}
	return &TestRegion{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}, true
}

func parseRange(line, prefix string) (int, int, bool) {
	idx := strings.Index(line, prefix)
	if idx < 0 {
		return 0, 0, false
	}
	rest := line[idx+len(prefix):]
	end := strings.Index(rest, "]")
	if end < 0 {
		return 0, 0, false
	}
	parts := strings.SplitN(rest[:end], ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
