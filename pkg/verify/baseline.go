package verify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"lkflow/pkg/metrics"
)

// DefaultRegressionThreshold is the percentage change in a key metric
// that flags a regression.
const DefaultRegressionThreshold = 10.0

// nearZero guards the percent-change division for baseline metrics that
// are effectively zero.
const nearZero = 1e-6

// MetricDelta records the change of one metric against the baseline.
type MetricDelta struct {
	Current       float64 `json:"current"`
	Baseline      float64 `json:"baseline"`
	ChangePercent float64 `json:"change_percent"`
}

// Comparison is the regression verdict for one estimator run.
type Comparison struct {
	Passed bool                   `json:"passed"`
	Deltas map[string]MetricDelta `json:"differences"`
	Flags  []string               `json:"flags"`
}

// LoadBaseline reads a stored baseline. A missing file is not an error;
// it returns nil so callers can skip the comparison.
func LoadBaseline(path string) (*ResultsFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading baseline: %w", err)
	}
	baseline := &ResultsFile{}
	if err := json.Unmarshal(data, baseline); err != nil {
		return nil, fmt.Errorf("error parsing baseline: %w", err)
	}
	return baseline, nil
}

// CompareMetrics checks the key regression metrics (mae_u, mae_v, epe)
// of a run against a baseline run. A change beyond thresholdPercent in
// either direction flags the metric; improvements are flagged too, since
// they mean the baseline is stale.
func CompareMetrics(current, baseline metrics.Set, thresholdPercent float64) Comparison {
	keys := []struct {
		name string
		curr float64
		base float64
	}{
		{"mae_u", current.MAEU, baseline.MAEU},
		{"mae_v", current.MAEV, baseline.MAEV},
		{"epe", current.EPE, baseline.EPE},
	}

	cmp := Comparison{Passed: true, Deltas: make(map[string]MetricDelta)}
	for _, k := range keys {
		if k.base < nearZero {
			if k.curr > nearZero {
				cmp.Flags = append(cmp.Flags,
					fmt.Sprintf("%s: %.4f (baseline was 0)", k.name, k.curr))
				cmp.Passed = false
			}
			continue
		}
		change := 100 * (k.curr - k.base) / k.base
		cmp.Deltas[k.name] = MetricDelta{
			Current:       k.curr,
			Baseline:      k.base,
			ChangePercent: change,
		}
		if math.Abs(change) > thresholdPercent {
			cmp.Flags = append(cmp.Flags,
				fmt.Sprintf("%s: %+.1f%% change (current=%.4f, baseline=%.4f)",
					k.name, change, k.curr, k.base))
			cmp.Passed = false
		}
	}
	return cmp
}

// RegressionFlag names one flagged estimator run.
type RegressionFlag struct {
	Pattern string
	Method  string
	Flags   []string
}

// CompareAgainstBaseline checks every result against the baseline file.
// Patterns missing from the baseline are skipped. It returns the flagged
// runs; an empty slice means the regression check passed.
func CompareAgainstBaseline(results []*PatternResult, baseline *ResultsFile, thresholdPercent float64) []RegressionFlag {
	var flagged []RegressionFlag
	if baseline == nil {
		return flagged
	}

	for _, r := range results {
		base, ok := baseline.Patterns[r.PatternName]
		if !ok {
			continue
		}

		single := CompareMetrics(r.SingleScale.Metrics, base.SingleScale.Metrics, thresholdPercent)
		if !single.Passed {
			flagged = append(flagged, RegressionFlag{
				Pattern: r.PatternName, Method: "single-scale", Flags: single.Flags,
			})
		}
		pyr := CompareMetrics(r.Pyramidal.Metrics, base.Pyramidal.Metrics, thresholdPercent)
		if !pyr.Passed {
			flagged = append(flagged, RegressionFlag{
				Pattern: r.PatternName, Method: "pyramidal", Flags: pyr.Flags,
			})
		}
	}
	return flagged
}

// UpdateBaseline replaces the stored baseline with the current results.
func UpdateBaseline(results []*PatternResult, path string) error {
	return SaveResults(results, path)
}
