// Package visualization renders optical flow results for documentation
// and debugging: quiver plots of flow fields, heatmaps of flow error
// magnitude, and grayscale renders of pyramid levels.
package visualization

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"lkflow/pkg/flow"
)

// QuiverOptions controls flow field quiver rendering.
type QuiverOptions struct {
	// Step is the arrow spacing in pixels.
	Step int
	// Scale multiplies arrow length.
	Scale float64
	// Title is the plot title.
	Title string
}

// headAngle is the angle between an arrowhead barb and the shaft.
const headAngle = math.Pi / 7

// FlowQuiver saves a quiver plot of the field: one arrow per Step pixels
// in each axis, colored by flow magnitude. The Y axis is inverted so the
// plot matches image coordinates (origin top-left).
func FlowQuiver(f *flow.Field, path string, opts QuiverOptions) error {
	step := opts.Step
	if step < 1 {
		step = 10
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	w, h := f.Width(), f.Height()

	// Find the magnitude range first so arrow colors span the palette.
	maxMag := 0.0
	for y := step; y < h; y += step {
		for x := step; x < w; x += step {
			mag := math.Hypot(f.U.At(x, y), f.V.At(x, y))
			if mag > maxMag {
				maxMag = mag
			}
		}
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "X (pixels)"
	p.Y.Label.Text = "Y (pixels)"
	p.X.Min, p.X.Max = 0, float64(w)
	p.Y.Min, p.Y.Max = 0, float64(h)

	for y := step; y < h; y += step {
		for x := step; x < w; x += step {
			u := f.U.At(x, y)
			v := f.V.At(x, y)
			mag := math.Hypot(u, v)

			frac := 0.0
			if maxMag > 0 {
				frac = mag / maxMag
			}
			c := magnitudeColor(frac)

			// Plot coordinates grow upward, image rows grow downward.
			x0 := float64(x)
			y0 := float64(h - y)
			x1 := x0 + u*scale
			y1 := y0 - v*scale

			if err := addSegment(p, x0, y0, x1, y1, c); err != nil {
				return err
			}
			if mag*scale > 0.5 {
				if err := addArrowHead(p, x0, y0, x1, y1, c); err != nil {
					return err
				}
			}
		}
	}

	if err := p.Save(12*vg.Inch, 9*vg.Inch, path); err != nil {
		return fmt.Errorf("save quiver plot: %w", err)
	}
	return nil
}

func addSegment(p *plot.Plot, x0, y0, x1, y1 float64, c color.Color) error {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	p.Add(line)
	return nil
}

// addArrowHead draws two barbs at the arrow tip.
func addArrowHead(p *plot.Plot, x0, y0, x1, y1 float64, c color.Color) error {
	dx := x1 - x0
	dy := y1 - y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	headLen := length * 0.3
	if headLen > 3 {
		headLen = 3
	}
	theta := math.Atan2(dy, dx)

	for _, sign := range []float64{1, -1} {
		phi := theta + math.Pi + sign*headAngle
		bx := x1 + headLen*math.Cos(phi)
		by := y1 + headLen*math.Sin(phi)
		if err := addSegment(p, x1, y1, bx, by, c); err != nil {
			return err
		}
	}
	return nil
}

// magnitudeColor maps a magnitude fraction in [0, 1] onto a blue-to-red
// hue ramp.
func magnitudeColor(frac float64) color.Color {
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	// Hue from 2/3 (blue) down to 0 (red).
	hue := (1 - frac) * 2.0 / 3.0
	r, g, b := hslToRGB(hue, 0.8, 0.45)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// errorGrid adapts a flow field's error magnitude against constant ground
// truth to the heatmap grid interface.
type errorGrid struct {
	field        *flow.Field
	uTrue, vTrue float64
}

func (g errorGrid) Dims() (c, r int) { return g.field.Width(), g.field.Height() }

func (g errorGrid) X(c int) float64 { return float64(c) }

// Y flips rows so the rendered heatmap matches image orientation.
func (g errorGrid) Y(r int) float64 { return float64(g.field.Height() - 1 - r) }

func (g errorGrid) Z(c, r int) float64 {
	row := g.field.Height() - 1 - r
	eu := g.field.U.At(c, row) - g.uTrue
	ev := g.field.V.At(c, row) - g.vTrue
	return math.Hypot(eu, ev)
}

// ErrorHeatmap saves a heatmap of per-pixel flow error magnitude against
// constant ground truth. The color range is clamped to [0, vmax] so plots
// of different patterns are comparable.
func ErrorHeatmap(f *flow.Field, uTrue, vTrue float64, path string, vmax float64, title string) error {
	if vmax <= 0 {
		vmax = 5
	}

	grid := errorGrid{field: f, uTrue: uTrue, vTrue: vTrue}
	hm := plotter.NewHeatMap(grid, palette.Heat(64, 1))
	hm.Min = 0
	hm.Max = vmax

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (pixels)"
	p.Y.Label.Text = "Y (pixels)"
	p.Add(hm)

	if err := p.Save(12*vg.Inch, 9*vg.Inch, path); err != nil {
		return fmt.Errorf("save error heatmap: %w", err)
	}
	return nil
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
