package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lkflow/pkg/config"
	"lkflow/pkg/suite"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "verification_config.yaml", "Path to verification config YAML")
	outputDir := flag.String("output-dir", "", "Output directory (default: suite dir from config)")
	patternName := flag.String("pattern", "all", "Test pattern to generate (\"all\" or specific name)")
	width := flag.Int("width", 0, "Frame width (default: from config)")
	height := flag.Int("height", 0, "Frame height (default: from config)")
	listPatterns := flag.Bool("list", false, "List available test patterns")
	flag.Parse()

	if *listPatterns {
		patterns := suite.Patterns()
		fmt.Println("\nAvailable Test Patterns:")
		fmt.Println("------------------------------------------------------------")
		for _, name := range suite.PatternNames() {
			fmt.Printf("%-25s - %s\n", name, patterns[name].Description)
		}
		fmt.Println("")
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dir := cfg.Suite.Dir
	if *outputDir != "" {
		dir = *outputDir
	}
	w := cfg.Suite.Width
	if *width > 0 {
		w = *width
	}
	h := cfg.Suite.Height
	if *height > 0 {
		h = *height
	}

	fmt.Println("============================================================")
	fmt.Println("Generating Optical Flow Test Suite")
	fmt.Println("============================================================")
	fmt.Printf("Resolution: %dx%d\n", w, h)
	fmt.Printf("Output directory: %s\n", dir)

	if *patternName == "all" {
		index, err := suite.Generate(dir, w, h)
		if err != nil {
			log.Fatalf("Suite generation failed: %v", err)
		}
		fmt.Printf("\nGenerated %d test patterns\n", index.NumPatterns)
		fmt.Printf("Suite index: %s\n", dir+"/"+suite.IndexFile)
		return
	}

	patterns := suite.Patterns()
	params, ok := patterns[*patternName]
	if !ok {
		fmt.Printf("ERROR: Unknown pattern %q\n", *patternName)
		fmt.Println("Use -list to see available patterns")
		os.Exit(1)
	}

	fmt.Printf("Generating pattern: %s\n", params.Name)
	fmt.Printf("  %s\n", params.Description)
	if err := suite.GeneratePattern(dir, params, w, h); err != nil {
		log.Fatalf("Pattern generation failed: %v", err)
	}
	fmt.Printf("Saved to: %s/%s\n", dir, params.Name)
}
