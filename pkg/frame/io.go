package frame

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"
)

// ReadRaw loads a frame from raw row-major 8-bit grayscale. The format is
// headerless, so the dimensions come from the caller.
func ReadRaw(path string, width, height int) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	f, err := FromBytes(data, width, height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteRaw saves the frame as raw row-major 8-bit grayscale.
func WriteRaw(f *Frame, path string) error {
	if err := os.WriteFile(path, f.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write frame %s: %w", path, err)
	}
	return nil
}

// ReadMem loads a frame from the hex interchange form: one two-digit hex
// byte per line, row-major, dimensions supplied out-of-band. Blank lines and
// "//" comment lines are skipped.
func ReadMem(path string, width, height int) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mem file %s: %w", path, err)
	}
	defer file.Close()

	data := make([]byte, 0, width*height)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		val, err := strconv.ParseUint(line, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex value %q in %s: %w", line, path, err)
		}
		data = append(data, byte(val))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mem file %s: %w", path, err)
	}

	f, err := FromBytes(data, width, height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteMem saves the frame in the hex interchange form.
func WriteMem(f *Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mem file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, b := range f.Bytes() {
		fmt.Fprintf(w, "%02x\n", b)
	}
	return w.Flush()
}

// WritePNG saves the frame as an 8-bit grayscale PNG for documentation and
// debugging; clamping follows Bytes.
func WritePNG(f *Frame, path string) error {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for i, b := range f.Bytes() {
		img.Pix[i] = b
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create png %s: %w", path, err)
	}
	defer file.Close()

	return png.Encode(file, img)
}

// ToGray converts the frame to a stdlib grayscale image without writing it.
func ToGray(f *Frame) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: clampByte(f.At(x, y))})
		}
	}
	return img
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
