package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
	"github.com/bdougie/pixelpoint/internal/results"
)

// pixelcollect runs a pixel description session: for each marked pixel
// the annotator types a uniquely-identifying description, and one
// aggregate document is written for the whole session.
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
		fmt.Println("Usage: pixelcollect --json points.json [--image path/to/image.jpg] [--output dir]")
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
	logger.Info("session loaded", "pixels", len(session.PixelData), "image", imagePath)

	in := bufio.NewReader(os.Stdin)
	collected := dataset.PixelSession{ImagePath: imagePath}

	fmt.Printf("Image: %s (%dx%d)\n", imagePath, width, height)
	for i, entry := range session.PixelData {
		fmt.Printf("\n[%d/%d] Pixel at (%d, %d)\n", i+1, len(session.PixelData), entry.Position.X, entry.Position.Y)
		fmt.Printf("Describe this location so it can be uniquely identified (or 'quit' to stop): ")

		desc, quit := readDescription(in)
		if quit {
			fmt.Println("Session stopped early.")
			break
		}

		collected.PixelData = append(collected.PixelData, dataset.PixelEntry{
			Description: desc,
			Position:    entry.Position,
		})
	}

	if len(collected.PixelData) == 0 {
		logger.Warn("no descriptions collected, nothing to save")
		return
	}

	imageName := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	path, err := results.WritePixelDescriptions(outputDir, imageName, collected, time.Now())
	if err != nil {
		log.Fatalf("Failed to save session: %v", err)
	}
	fmt.Printf("\nCollected %d descriptions, saved to %s\n", len(collected.PixelData), path)
}

func readDescription(in *bufio.Reader) (string, bool) {
	for {
		line, err := in.ReadString('\n')
		if err != nil {
			return "", true
		}
		line = strings.TrimSpace(line)
		if strings.EqualFold(line, "quit") {
			return "", true
		}
		if line == "" {
			fmt.Printf("The description cannot be empty, try again: ")
			continue
		}
		return line, false
	}
}
