package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"log/slog"

	"github.com/lmittmann/tint"
	_ "go.uber.org/automaxprocs"

	"github.com/bdougie/pixelpoint/internal/annotator"
	"github.com/bdougie/pixelpoint/internal/dataset"
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
	outputDir := "model_descriptions"
	model := "llama3.2-vision:11b"
	ollamaHost := ""
	ollamaPort := 0

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
		case "--model":
			if i+1 < len(os.Args) {
				model = os.Args[i+1]
				i++
			}
		case "--ollama-host":
			if i+1 < len(os.Args) {
				ollamaHost = os.Args[i+1]
				i++
			}
		case "--ollama-port":
			if i+1 < len(os.Args) {
				fmt.Sscanf(os.Args[i+1], "%d", &ollamaPort)
				i++
			}
		}
	}

	if jsonPath == "" || imageDir == "" {
		fmt.Println("Usage: annotator --json samples.json --image-dir path/to/images [--output dir] [--model name] [--ollama-host url] [--ollama-port n]")
		os.Exit(1)
	}

	samples, err := dataset.Load(jsonPath)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}
	logger.Info("loaded samples", "count", len(samples), "path", jsonPath)

	writer, err := results.NewWriter(outputDir, resume.Collection)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	visionAgent, err := annotator.NewAgent(ctx, logger, model, ollamaHost, ollamaPort)
	if err != nil {
		log.Fatalf("Failed to initialize vision agent: %v", err)
	}

	fmt.Printf("Starting model pre-annotation...\n")
	a := annotator.New(visionAgent, writer, logger)
	if err := a.AnnotateBatch(ctx, samples, imageDir); err != nil {
		log.Printf("Error during annotation: %v", err)
		os.Exit(1)
	}

	fmt.Println("Pre-annotation completed successfully!")
}
