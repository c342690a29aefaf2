package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
	"github.com/bdougie/pixelpoint/internal/results"
	"github.com/bdougie/pixelpoint/internal/score"
)

// pixeleval replays a pixel description session: for each recorded
// description the evaluator guesses the pixel, and one aggregate result
// document is written for the whole session.
func main() {
	// Configure logger
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)

	jsonPath := ""
	imagePath := ""
	outputDir := "output"

	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--json":
			if i+1 < len(os.Args) {
				jsonPath = os.Args[i+1]
				i++
			}
		case "--image":
			if i+1 < len(os.Args) {
				imagePath = os.Args[i+1]
				i++
			}
		case "--output":
			if i+1 < len(os.Args) {
				outputDir = os.Args[i+1]
				i++
			}
		}
	}

	if jsonPath == "" {
		fmt.Println("Usage: pixeleval --json session.json [--image path/to/image.jpg] [--output dir]")
		os.Exit(1)
	}

	session, err := dataset.LoadPixelSession(jsonPath)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}
	if imagePath == "" {
		imagePath = session.ImagePath
	}
	width, height, err := mask.ImageSize(imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}
	logger.Info("session loaded", "descriptions", len(session.PixelData), "image", imagePath)

	in := bufio.NewReader(os.Stdin)
	var guesses []results.SessionGuess
	var distances []float64

	fmt.Printf("Image: %s (%dx%d)\n", imagePath, width, height)
	for i, entry := range session.PixelData {
		fmt.Printf("\n[%d/%d] %q\n", i+1, len(session.PixelData), entry.Description)
		fmt.Printf("Enter your guess as 'x,y' (or 'quit' to stop): ")

		guess, quit := readGuess(in, width, height)
		if quit {
			fmt.Println("Session stopped early.")
			break
		}

		distance := score.PointDistance(guess, entry.Position)
		fmt.Printf("Your guess was %.2f pixels away from the true location.\n", distance)

		guesses = append(guesses, results.SessionGuess{
			Description:     entry.Description,
			TruePosition:    entry.Position,
			GuessedPosition: guess,
			Distance:        distance,
		})
		distances = append(distances, distance)
	}

	if len(guesses) == 0 {
		logger.Warn("no guesses recorded, nothing to save")
		return
	}

	result := results.SessionResult{
		ImagePath:       imagePath,
		JSONPath:        jsonPath,
		ImageDimensions: [2]int{width, height},
		Statistics:      score.SummarizeDistances(distances),
		EvaluationData:  guesses,
	}

	imageName := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	path, err := results.WriteSession(outputDir, imageName, result, time.Now())
	if err != nil {
		log.Fatalf("Failed to save session results: %v", err)
	}

	stats := result.Statistics
	fmt.Printf("\nAccuracy (<= %.0f px): %.1f%% (%d/%d)\n", score.AccuracyThreshold, stats.AccuracyRate*100, stats.AccurateGuesses, stats.TotalGuesses)
	fmt.Printf("Average distance: %.2f px (min %.2f, max %.2f)\n", stats.AverageDistance, stats.MinDistance, stats.MaxDistance)
	fmt.Printf("Evaluation results saved to %s\n", path)
}

func readGuess(in *bufio.Reader, width, height int) (dataset.Point, bool) {
	for {
		line, err := in.ReadString('\n')
		if err != nil {
			return dataset.Point{}, true
		}
		line = strings.TrimSpace(line)
		if strings.EqualFold(line, "quit") {
			return dataset.Point{}, true
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) == 2 {
			x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
			y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
			if errX == nil && errY == nil {
				if x < 0 {
					x = 0
				}
				if y < 0 {
					y = 0
				}
				if x > width-1 {
					x = width - 1
				}
				if y > height-1 {
					y = height - 1
				}
				return dataset.Point{X: x, Y: y}, false
			}
		}
		fmt.Printf("Could not read that as 'x,y', try again: ")
	}
}
