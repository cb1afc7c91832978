package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"lkflow/pkg/flow"
	"lkflow/pkg/frame"
)

// SavePyramidLevels writes each level of a Gaussian pyramid as a PNG in
// outputDir, coarsest first, named level_00.png upward.
func SavePyramidLevels(pyr flow.Pyramid, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for i, level := range pyr {
		name := filepath.Join(outputDir, fmt.Sprintf("level_%02d.png", i))
		if err := frame.WritePNG(level, name); err != nil {
			return fmt.Errorf("level %d (%dx%d): %w", i, level.Width, level.Height, err)
		}
	}
	return nil
}

// normalizedGray renders a frame's samples to an 8-bit grayscale image,
// stretching the sample range to [0, 255]. A constant frame renders as
// mid-gray.
func normalizedGray(f *frame.Frame) *image.Gray {
	lo, hi := f.Pix[0], f.Pix[0]
	for _, v := range f.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	span := hi - lo
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			g := uint8(128)
			if span > 0 {
				g = uint8((f.At(x, y) - lo) / span * 255)
			}
			img.SetGray(x, y, color.Gray{Y: g})
		}
	}
	return img
}

// SaveFlowComponents writes the U and V components of a field as
// range-normalized grayscale PNGs, useful for eyeballing flow structure
// without a plotting toolchain.
func SaveFlowComponents(f *flow.Field, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, c := range []struct {
		name string
		img  *frame.Frame
	}{
		{"flow_u.png", f.U},
		{"flow_v.png", f.V},
	} {
		if err := savePNG(normalizedGray(c.img), filepath.Join(outputDir, c.name)); err != nil {
			return err
		}
	}
	return nil
}

func savePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
