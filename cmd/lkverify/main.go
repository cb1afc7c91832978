package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lkflow/pkg/config"
	"lkflow/pkg/suite"
	"lkflow/pkg/verify"
	"lkflow/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "verification_config.yaml", "Path to verification config YAML")
	patternName := flag.String("pattern", "", "Specific pattern to test (default: all)")
	pyramidName := flag.String("pyramid-config", "default", "Pyramid configuration to use (default, shallow, deep)")
	noVisualizations := flag.Bool("no-visualizations", false, "Skip generating visualization plots")
	compareBaseline := flag.Bool("compare-baseline", false, "Compare results against baseline for regression testing")
	updateBaseline := flag.Bool("update-baseline", false, "Update baseline with current results")
	regressionThreshold := flag.Float64("regression-threshold", verify.DefaultRegressionThreshold,
		"Percentage threshold for flagging regressions")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("============================================================")
	fmt.Println("Optical Flow Verification Suite")
	fmt.Println("============================================================")
	fmt.Printf("Config: %s\n", *configPath)
	fmt.Printf("Pyramid config: %s\n", *pyramidName)

	index, err := suite.LoadIndex(cfg.Suite.Dir)
	if err != nil {
		log.Fatalf("Failed to load test suite from %q (run gensuite first): %v", cfg.Suite.Dir, err)
	}
	fmt.Printf("Test suite: %s\n", cfg.Suite.Dir)
	fmt.Printf("Patterns available: %d\n", index.NumPatterns)

	names := suite.PatternNames()
	if *patternName != "" {
		if _, ok := index.Patterns[*patternName]; !ok {
			log.Fatalf("Pattern %q not found in suite", *patternName)
		}
		names = []string{*patternName}
	}
	fmt.Printf("Testing %d patterns\n\n", len(names))

	startTime := time.Now()
	outcomes, err := verify.VerifySuite(cfg.Suite.Dir, names, cfg, *pyramidName)
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	fmt.Printf("\nVerification finished in %.2f seconds\n", time.Since(startTime).Seconds())

	results := make([]*verify.PatternResult, len(outcomes))
	for i, outcome := range outcomes {
		results[i] = outcome.Result
	}

	// Visualizations for showcase patterns
	if !*noVisualizations {
		showcase := make(map[string]bool, len(cfg.Visualization.ShowcasePatterns))
		for _, name := range cfg.Visualization.ShowcasePatterns {
			showcase[name] = true
		}
		opts := visualization.ShowcaseOptions{
			QuiverStep:  cfg.Visualization.QuiverStep,
			QuiverScale: cfg.Visualization.QuiverScale,
			ErrorMax:    cfg.Visualization.ErrorMax,
		}
		for _, outcome := range outcomes {
			r := outcome.Result
			if !showcase[r.PatternName] {
				continue
			}
			fmt.Printf("Generating visualizations for %s...\n", r.PatternName)
			err := visualization.Showcase(r.PatternName, cfg.Output.VisualizationsDir,
				outcome.SingleScaleFlow, outcome.PyramidalFlow,
				r.GroundTruth.U, r.GroundTruth.V, opts)
			if err != nil {
				log.Printf("Warning: Failed to visualize %s: %v", r.PatternName, err)
			}
		}
	}

	// Reports
	fmt.Println("\n" + verify.MarkdownReport(results))
	if err := verify.SaveMarkdown(results, cfg.Output.ResultsMarkdown); err != nil {
		log.Fatalf("Failed to save markdown report: %v", err)
	}
	fmt.Printf("Markdown table saved: %s\n", cfg.Output.ResultsMarkdown)
	if err := verify.SaveResults(results, cfg.Output.ResultsJSON); err != nil {
		log.Fatalf("Failed to save results JSON: %v", err)
	}
	fmt.Printf("Results saved: %s\n", cfg.Output.ResultsJSON)

	if *updateBaseline {
		if err := verify.UpdateBaseline(results, cfg.Output.BaselinePath); err != nil {
			log.Fatalf("Failed to update baseline: %v", err)
		}
		fmt.Printf("Baseline updated: %s\n", cfg.Output.BaselinePath)
	}

	if *compareBaseline {
		baseline, err := verify.LoadBaseline(cfg.Output.BaselinePath)
		if err != nil {
			log.Fatalf("Failed to load baseline: %v", err)
		}
		if baseline == nil {
			fmt.Println("No baseline found. Run with -update-baseline to create one.")
			return
		}

		flagged := verify.CompareAgainstBaseline(results, baseline, *regressionThreshold)
		if len(flagged) == 0 {
			fmt.Println("All patterns pass regression check")
			return
		}

		fmt.Printf("Regression detected in %d test(s)\n", len(flagged))
		for _, f := range flagged {
			fmt.Printf("  - %s (%s):\n", f.Pattern, f.Method)
			for _, msg := range f.Flags {
				fmt.Printf("      %s\n", msg)
			}
		}
		os.Exit(1)
	}
}
