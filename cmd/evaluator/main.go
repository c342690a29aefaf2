package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/driver"
	"github.com/bdougie/pixelpoint/internal/interact"
	"github.com/bdougie/pixelpoint/internal/results"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/score"
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
	maskDir := ""
	outputDir := "evaluation_results"
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
		case "--mask-dir":
			if i+1 < len(os.Args) {
				maskDir = os.Args[i+1]
				i++
			}
		case "--output":
			if i+1 < len(os.Args) {
				outputDir = os.Args[i+1]
				i++
			}
		case "--max-samples":
			if i+1 < len(os.Args) {
				fmt.Sscanf(os.Args[i+1], "%d", &maxSamples)
				i++
			}
		}
	}

	if jsonPath == "" || imageDir == "" || maskDir == "" {
		fmt.Println("Usage: evaluator --json descriptions.json --image-dir path/to/images --mask-dir path/to/masks [--output dir] [--max-samples n]")
		os.Exit(1)
	}

	samples, err := dataset.Load(jsonPath)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}
	if maxSamples > 0 && maxSamples < len(samples) {
		samples = samples[:maxSamples]
	}
	logger.Info("loaded samples", "count", len(samples), "path", jsonPath)

	writer, err := results.NewWriter(outputDir, resume.Evaluation)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	console := interact.NewGuessConsole(imageDir, maskDir, logger)
	batch := driver.New(samples, outputDir, resume.Evaluation, console, results.NewRecorder(writer), logger)

	fmt.Printf("Starting description evaluation...\n")
	if err := batch.Run(ctx); err != nil {
		log.Printf("Error during evaluation: %v", err)
		os.Exit(1)
	}

	if batch.State() == driver.StateDone || batch.State() == driver.StateCancelled {
		printSummary(writer, samples)
	}
	fmt.Printf("Evaluation finished (%s), %d samples completed this run.\n", batch.State(), batch.Processed())
}

// printSummary aggregates every result file present for the sample set.
func printSummary(writer *results.Writer, samples []dataset.Sample) {
	var records []dataset.GuessRecord
	for _, s := range samples {
		result, err := results.ReadGuess(writer.Path(s.MaskID()))
		if err != nil {
			continue
		}
		records = append(records, result.EvaluationData)
	}
	if len(records) == 0 {
		return
	}
	summary := score.Summarize(records)
	fmt.Printf("\nScored guesses: %d\n", summary.TotalGuesses)
	fmt.Printf("Accuracy (<= %.0f px): %.1f%% (%d/%d)\n", score.AccuracyThreshold, summary.AccuracyRate*100, summary.AccurateGuesses, summary.TotalGuesses)
	fmt.Printf("Average distance: %.2f px (min %.2f, max %.2f)\n", summary.AverageDistance, summary.MinDistance, summary.MaxDistance)
	if summary.CannotTell > 0 || summary.MultipleMatch > 0 {
		fmt.Printf("Cannot tell: %d, multiple match: %d (excluded from accuracy)\n", summary.CannotTell, summary.MultipleMatch)
	}
}
