package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"lkflow/pkg/flow"
)

// stationaryThreshold is the flow magnitude below which a vector counts as
// stationary for the angular-error degenerate case.
const stationaryThreshold = 1e-6

// Set holds every metric for one estimated field against constant ground
// truth, plus the number of pixels that contributed.
type Set struct {
	// MAEU and MAEV are the mean absolute errors of the horizontal and
	// vertical components, in pixels.
	MAEU float64 `json:"mae_u"`
	MAEV float64 `json:"mae_v"`
	// RMSE is the root mean square error of the joint flow error, in
	// pixels.
	RMSE float64 `json:"rmse"`
	// EPE is the average endpoint error, the mean Euclidean distance
	// between estimated and true flow vectors, in pixels.
	EPE float64 `json:"epe"`
	// AAE is the average angular error in degrees, measured between the
	// 3-D lifted vectors (u, v, 1).
	AAE float64 `json:"aae"`
	// NumPixels is the number of pixels inside the mask.
	NumPixels int `json:"num_pixels"`
}

// maskedSamples collects one sample per masked pixel, computed from the
// estimated flow vector at that pixel.
func maskedSamples(f *flow.Field, mask *Mask, sample func(u, v float64) float64) []float64 {
	w, h := f.Width(), f.Height()
	out := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask.Contains(x, y) {
				continue
			}
			out = append(out, sample(f.U.At(x, y), f.V.At(x, y)))
		}
	}
	return out
}

// MAE returns the mean absolute error of each flow component against
// constant ground truth, restricted to the mask.
func MAE(f *flow.Field, uTrue, vTrue float64, mask *Mask) (maeU, maeV float64) {
	errsU := maskedSamples(f, mask, func(u, v float64) float64 {
		return math.Abs(u - uTrue)
	})
	errsV := maskedSamples(f, mask, func(u, v float64) float64 {
		return math.Abs(v - vTrue)
	})
	if len(errsU) == 0 {
		return 0, 0
	}
	return stat.Mean(errsU, nil), stat.Mean(errsV, nil)
}

// RMSE returns the root mean square of the joint component error
// eu^2 + ev^2 over the mask.
func RMSE(f *flow.Field, uTrue, vTrue float64, mask *Mask) float64 {
	sq := maskedSamples(f, mask, func(u, v float64) float64 {
		eu := u - uTrue
		ev := v - vTrue
		return eu*eu + ev*ev
	})
	if len(sq) == 0 {
		return 0
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

// EPE returns the average endpoint error, the mean Euclidean distance
// between the estimated and true flow vectors over the mask.
func EPE(f *flow.Field, uTrue, vTrue float64, mask *Mask) float64 {
	dists := maskedSamples(f, mask, func(u, v float64) float64 {
		return math.Hypot(u-uTrue, v-vTrue)
	})
	if len(dists) == 0 {
		return 0
	}
	return stat.Mean(dists, nil)
}

// AAE returns the average angular error in degrees. Each flow vector is
// lifted to 3-D as (u, v, 1) so zero-motion vectors still have a defined
// direction; the error is the angle between the lifted estimate and the
// lifted ground truth. When the ground truth is stationary and every
// estimated vector is stationary too, the result is exactly 0.
func AAE(f *flow.Field, uTrue, vTrue float64, mask *Mask) float64 {
	magTrue := math.Hypot(uTrue, vTrue)
	if magTrue < stationaryThreshold {
		mags := maskedSamples(f, mask, math.Hypot)
		allStationary := true
		for _, m := range mags {
			if m >= stationaryThreshold {
				allStationary = false
				break
			}
		}
		if allStationary {
			return 0.0
		}
	}

	normTrue := math.Sqrt(uTrue*uTrue + vTrue*vTrue + 1)
	angles := maskedSamples(f, mask, func(u, v float64) float64 {
		normPred := math.Sqrt(u*u + v*v + 1)
		dot := (u*uTrue + v*vTrue + 1) / (normPred * normTrue)
		if dot > 1 {
			dot = 1
		} else if dot < -1 {
			dot = -1
		}
		return math.Acos(dot) * 180 / math.Pi
	})
	if len(angles) == 0 {
		return 0
	}
	return stat.Mean(angles, nil)
}

// All computes every metric in one call.
func All(f *flow.Field, uTrue, vTrue float64, mask *Mask) Set {
	maeU, maeV := MAE(f, uTrue, vTrue, mask)
	n := f.Width() * f.Height()
	if mask != nil {
		n = mask.Count()
	}
	return Set{
		MAEU:      maeU,
		MAEV:      maeV,
		RMSE:      RMSE(f, uTrue, vTrue, mask),
		EPE:       EPE(f, uTrue, vTrue, mask),
		AAE:       AAE(f, uTrue, vTrue, mask),
		NumPixels: n,
	}
}
