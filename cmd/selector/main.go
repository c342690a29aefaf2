package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/driver"
	"github.com/bdougie/pixelpoint/internal/interact"
	"github.com/bdougie/pixelpoint/internal/results"
	"github.com/bdougie/pixelpoint/internal/resume"
)

func main() {
	ctx := context.Background()

	// Configure logger
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)

	// Parse command line arguments
	jsonPath := ""
	imageDir := ""
	outputDir := "selection_results"
	optionsArg := ""
	maxSamples := 0

	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--json":
			if i+1 < len(os.Args) {
				jsonPath = os.Args[i+1]
				i++
			}
		case "--image-dir":
			if i+1 < len(os.Args) {
				imageDir = os.Args[i+1]
				i++
			}
		case "--output":
			if i+1 < len(os.Args) {
				outputDir = os.Args[i+1]
				i++
			}
		case "--options":
			if i+1 < len(os.Args) {
				optionsArg = os.Args[i+1]
				i++
			}
		case "--max-samples":
			if i+1 < len(os.Args) {
				fmt.Sscanf(os.Args[i+1], "%d", &maxSamples)
				i++
			}
		}
	}

	if jsonPath == "" || imageDir == "" {
		fmt.Println("Usage: selector --json samples.json --image-dir path/to/images [--output dir] [--options \"A,B,C,D\"] [--max-samples n]")
		os.Exit(1)
	}

	var options []string
	if optionsArg != "" {
		for _, opt := range strings.Split(optionsArg, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}
	}

	samples, err := dataset.Load(jsonPath)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}
	if maxSamples > 0 && maxSamples < len(samples) {
		samples = samples[:maxSamples]
	}
	logger.Info("loaded samples", "count", len(samples), "path", jsonPath)

	writer, err := results.NewWriter(outputDir, resume.Selection)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	console := interact.NewSelectionConsole(imageDir, options, logger)
	batch := driver.New(samples, outputDir, resume.Selection, console, results.NewRecorder(writer), logger)

	fmt.Printf("Starting option selection...\n")
	if err := batch.Run(ctx); err != nil {
		log.Printf("Error during selection: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Selection finished (%s), %d samples completed this run.\n", batch.State(), batch.Processed())
}
