package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/results"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/storage"
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
	outputDir := ""
	mode := "collection"
	datasetName := "default"
	search := ""
	limit := 5
	initSchema := false
	dbConfig := storage.PostgresConfig{
		Host:     envOr("PGHOST", "localhost"),
		Port:     envOr("PGPORT", "5432"),
		User:     envOr("PGUSER", "postgres"),
		Password: os.Getenv("PGPASSWORD"),
		DBName:   envOr("PGDATABASE", "pixelpoint"),
	}

	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--json":
			if i+1 < len(os.Args) {
				jsonPath = os.Args[i+1]
				i++
			}
		case "--output-dir":
			if i+1 < len(os.Args) {
				outputDir = os.Args[i+1]
				i++
			}
		case "--mode":
			if i+1 < len(os.Args) {
				mode = os.Args[i+1]
				i++
			}
		case "--dataset":
			if i+1 < len(os.Args) {
				datasetName = os.Args[i+1]
				i++
			}
		case "--search":
			if i+1 < len(os.Args) {
				search = os.Args[i+1]
				i++
			}
		case "--limit":
			if i+1 < len(os.Args) {
				fmt.Sscanf(os.Args[i+1], "%d", &limit)
				i++
			}
		case "--init-schema":
			initSchema = true
		}
	}

	if mode != "collection" && mode != "evaluation" {
		fmt.Println("Mode must be 'collection' or 'evaluation'")
		os.Exit(1)
	}
	if search == "" && (jsonPath == "" || outputDir == "") {
		fmt.Println("Usage: indexer --json samples.json --output-dir results [--mode collection|evaluation] [--dataset name] [--init-schema]")
		fmt.Println("       indexer --search \"query text\" [--dataset name] [--limit n]")
		os.Exit(1)
	}

	if initSchema {
		if err := storage.InitSchema(ctx, dbConfig); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		logger.Info("schema ready", "database", dbConfig.DBName)
	}

	embedder := storage.NewOllamaEmbedder("", "")
	index, err := storage.NewPostgresIndex(ctx, dbConfig, datasetName, embedder)
	if err != nil {
		log.Fatalf("Failed to open result index: %v", err)
	}
	defer index.Close()

	if search != "" {
		matches, err := index.SearchDescriptions(ctx, search, limit)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		for _, m := range matches {
			fmt.Printf("%.3f  %s  %s\n", m.Similarity, m.SampleKey, m.Description)
		}
		return
	}

	samples, err := dataset.Load(jsonPath)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}

	conv := resume.Collection
	if mode == "evaluation" {
		conv = resume.Evaluation
	}
	writer, err := results.NewWriter(outputDir, conv)
	if err != nil {
		log.Fatalf("Failed to open output directory: %v", err)
	}

	completed := resume.Completed(outputDir, conv)
	indexed := 0
	for _, s := range samples {
		if !completed[s.MaskID()] {
			continue
		}
		if mode == "collection" {
			if err := indexDescription(ctx, index, writer, s); err != nil {
				log.Fatalf("Failed to index '%s': %v", s.MaskID(), err)
			}
		} else {
			if err := indexGuess(ctx, index, writer, s); err != nil {
				log.Fatalf("Failed to index '%s': %v", s.MaskID(), err)
			}
		}
		indexed++
	}

	logger.Info("indexing complete", "mode", mode, "indexed", indexed, "dataset", datasetName)
	fmt.Printf("Indexed %d of %d samples into dataset '%s'.\n", indexed, len(samples), datasetName)
}

func indexDescription(ctx context.Context, index *storage.PostgresIndex, writer *results.Writer, s dataset.Sample) error {
	stored, err := results.ReadSample(writer.Path(s.MaskID()))
	if err != nil {
		return err
	}
	rec := dataset.DescriptionRecord{
		SampleID:        stored.MaskID(),
		Text:            stored.UserTextDes,
		AudioTranscript: stored.UserAudioDes,
		AudioFile:       stored.UserAudioFile,
		CreatedAt:       time.Now(),
	}
	return index.AddDescription(ctx, *stored, rec)
}

func indexGuess(ctx context.Context, index *storage.PostgresIndex, writer *results.Writer, s dataset.Sample) error {
	result, err := results.ReadGuess(writer.Path(s.MaskID()))
	if err != nil {
		return err
	}
	return index.AddGuess(ctx, result.SampleData, result.EvaluationData)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
