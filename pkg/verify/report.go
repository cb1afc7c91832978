package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ResultsFile is the serialized form of a verification run, keyed by
// pattern name so regression checks can look up individual patterns.
type ResultsFile struct {
	Version   string                    `json:"version"`
	Timestamp string                    `json:"timestamp"`
	Patterns  map[string]*PatternResult `json:"patterns"`
}

const resultsVersion = "1.0"

// MarkdownReport renders the results as two markdown tables, one per
// estimator, followed by a metrics legend.
func MarkdownReport(results []*PatternResult) string {
	var b strings.Builder

	b.WriteString("# Optical Flow Verification Results\n\n")

	b.WriteString("## Single-Scale Lucas-Kanade\n\n")
	writeTable(&b, results, func(r *PatternResult) MethodResult { return r.SingleScale })

	b.WriteString("\n## Pyramidal Lucas-Kanade\n\n")
	writeTable(&b, results, func(r *PatternResult) MethodResult { return r.Pyramidal })

	b.WriteString("\n## Metrics Legend\n\n")
	b.WriteString("- **MAE**: Mean Absolute Error (pixels)\n")
	b.WriteString("- **RMSE**: Root Mean Square Error (pixels)\n")
	b.WriteString("- **EPE**: Average Endpoint Error (pixels)\n")
	b.WriteString("- **AAE**: Average Angular Error (degrees)\n")
	b.WriteString("- **Pass**: MAE within expected threshold\n")
	b.WriteString("- **Warning**: MAE slightly elevated but acceptable\n")
	b.WriteString("- **Fail**: MAE exceeds threshold (expected for extreme motion)\n")

	return b.String()
}

func writeTable(b *strings.Builder, results []*PatternResult, pick func(*PatternResult) MethodResult) {
	b.WriteString("| Pattern | Ground Truth | MAE (u) | MAE (v) | RMSE | EPE | AAE | Status |\n")
	b.WriteString("|---------|--------------|---------|---------|------|-----|-----|--------|\n")
	for _, r := range results {
		m := pick(r)
		fmt.Fprintf(b, "| %-20s | (%4.1f, %4.1f) | %5.3f | %5.3f | %5.3f | %5.3f | %5.2f | %s |\n",
			r.PatternName, r.GroundTruth.U, r.GroundTruth.V,
			m.Metrics.MAEU, m.Metrics.MAEV, m.Metrics.RMSE,
			m.Metrics.EPE, m.Metrics.AAE, m.Status)
	}
}

// SaveResults writes the results JSON used for regression testing.
func SaveResults(results []*PatternResult, path string) error {
	file := &ResultsFile{
		Version:   resultsVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Patterns:  make(map[string]*PatternResult, len(results)),
	}
	for _, r := range results {
		file.Patterns[r.PatternName] = r
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing results file: %w", err)
	}
	return nil
}

// SaveMarkdown writes the markdown report to a file, creating the parent
// directory if needed.
func SaveMarkdown(results []*PatternResult, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating results directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(MarkdownReport(results)), 0644); err != nil {
		return fmt.Errorf("error writing markdown report: %w", err)
	}
	return nil
}
