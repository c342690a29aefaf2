package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/pixelpoint/internal/config"
	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/driver"
	"github.com/bdougie/pixelpoint/internal/interact"
	"github.com/bdougie/pixelpoint/internal/results"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/speech"
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
	outputJSONDir := "collected_descriptions"
	outputAudioDir := "collected_audio"
	configPath := ""
	maxSamples := 0
	withAudio := false

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
		case "--output-json":
			if i+1 < len(os.Args) {
				outputJSONDir = os.Args[i+1]
				i++
			}
		case "--output-audio":
			if i+1 < len(os.Args) {
				outputAudioDir = os.Args[i+1]
				i++
			}
		case "--config":
			if i+1 < len(os.Args) {
				configPath = os.Args[i+1]
				i++
			}
		case "--max-samples":
			if i+1 < len(os.Args) {
				fmt.Sscanf(os.Args[i+1], "%d", &maxSamples)
				i++
			}
		case "--audio":
			withAudio = true
		}
	}

	if jsonPath == "" || imageDir == "" {
		fmt.Println("Usage: collector --json samples.json --image-dir path/to/images [--output-json dir] [--output-audio dir] [--audio] [--config config.yaml] [--max-samples n]")
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

	writer, err := results.NewWriter(outputJSONDir, resume.Collection)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	// Audio capture and streaming transcription are optional; without
	// --audio the collector is text only.
	var recorder *speech.Recorder
	var transcriber *speech.Transcriber
	if withAudio {
		if err := os.MkdirAll(outputAudioDir, 0755); err != nil {
			log.Fatalf("Failed to create audio directory: %v", err)
		}
		recorder = speech.NewRecorder(logger)
		if configPath != "" {
			cfg, err := config.Load(configPath)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}
			apiKey, err := cfg.String("api.google.key")
			if err != nil {
				log.Fatalf("Speech API key missing from config: %v", err)
			}
			transcriber = speech.NewTranscriber(apiKey, logger)
		} else {
			logger.Warn("no --config given, audio takes will be saved without transcription")
		}
	}

	console := interact.NewDescriptionConsole(imageDir, outputAudioDir, recorder, transcriber, logger)
	batch := driver.New(samples, outputJSONDir, resume.Collection, console, results.NewRecorder(writer), logger)

	fmt.Printf("Starting description collection...\n")
	if err := batch.Run(ctx); err != nil {
		log.Printf("Error during collection: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Collection finished (%s), %d samples completed this run.\n", batch.State(), batch.Processed())
}
