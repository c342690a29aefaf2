package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/lmittmann/tint"
	http "github.com/valyala/fasthttp"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
	"github.com/bdougie/pixelpoint/internal/overlay"
	"github.com/bdougie/pixelpoint/internal/results"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/score"
)

// review serves a finished evaluation output directory for quick
// inspection: aggregate stats, raw result documents and rendered
// overlays of each guess.
func main() {
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)

	outputDir := ""
	imageDir := ""
	maskDir := ""
	addr := "0.0.0.0:8093"

	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--output-dir":
			if i+1 < len(os.Args) {
				outputDir = os.Args[i+1]
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
		case "--addr":
			if i+1 < len(os.Args) {
				addr = os.Args[i+1]
				i++
			}
		}
	}

	if outputDir == "" {
		fmt.Println("Usage: review --output-dir evaluation_results [--image-dir dir] [--mask-dir dir] [--addr host:port]")
		os.Exit(1)
	}

	handle := func(c *http.RequestCtx) {
		switch string(c.Path()) {
		case "/summary":
			serveSummary(c, outputDir)
		case "/result":
			serveResult(c, outputDir)
		case "/overlay":
			serveOverlay(c, outputDir, imageDir, maskDir)
		default:
			c.SetStatusCode(http.StatusNotFound)
		}
	}

	logger.Info("serving review", "addr", addr, "output", outputDir)
	if err := http.ListenAndServe(addr, handle); err != nil {
		log.Fatal(err)
	}
}

// loadResults reads every evaluation document in the output directory.
func loadResults(outputDir string) map[string]*results.GuessResult {
	loaded := make(map[string]*results.GuessResult)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return loaded
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := resume.Evaluation.ID(entry.Name())
		if !ok {
			continue
		}
		result, err := results.ReadGuess(filepath.Join(outputDir, entry.Name()))
		if err != nil {
			log.Printf("Skipping unreadable result %s: %v", entry.Name(), err)
			continue
		}
		loaded[id] = result
	}
	return loaded
}

func serveSummary(c *http.RequestCtx, outputDir string) {
	loaded := loadResults(outputDir)
	records := make([]dataset.GuessRecord, 0, len(loaded))
	for _, r := range loaded {
		records = append(records, r.EvaluationData)
	}

	summary := struct {
		Results    int           `json:"results"`
		Statistics score.Summary `json:"statistics"`
	}{
		Results:    len(loaded),
		Statistics: score.Summarize(records),
	}

	data, err := json.Marshal(summary)
	if err != nil {
		c.SetStatusCode(http.StatusInternalServerError)
		return
	}
	c.SetContentType("application/json")
	c.Write(data)
}

func serveResult(c *http.RequestCtx, outputDir string) {
	id := string(c.URI().QueryArgs().Peek("id"))
	if id == "" {
		c.SetStatusCode(http.StatusBadRequest)
		return
	}
	data, err := os.ReadFile(filepath.Join(outputDir, resume.Evaluation.Filename(id)))
	if err != nil {
		c.SetStatusCode(http.StatusNotFound)
		return
	}
	c.SetContentType("application/json")
	c.Write(data)
}

func serveOverlay(c *http.RequestCtx, outputDir, imageDir, maskDir string) {
	id := string(c.URI().QueryArgs().Peek("id"))
	if id == "" {
		c.SetStatusCode(http.StatusBadRequest)
		return
	}
	result, err := results.ReadGuess(filepath.Join(outputDir, resume.Evaluation.Filename(id)))
	if err != nil {
		c.SetStatusCode(http.StatusNotFound)
		return
	}

	s := result.SampleData
	imagePath := s.ImagePath
	if imagePath == "" || !fileExists(imagePath) {
		imagePath = filepath.Join(imageDir, s.ImageID+".jpg")
	}
	f, err := os.Open(imagePath)
	if err != nil {
		log.Printf("Err [image] %v", err)
		c.SetStatusCode(http.StatusNotFound)
		return
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		log.Printf("Err [decode] %v", err)
		c.SetStatusCode(http.StatusInternalServerError)
		return
	}

	var m *mask.Mask
	if s.MaskPath != "" && maskDir != "" {
		bounds := img.Bounds()
		loadedMask, err := mask.Load(filepath.Join(maskDir, s.MaskPath), bounds.Dx(), bounds.Dy())
		if err == nil {
			m = loadedMask
		}
	}

	rendered := overlay.Render(img, m, result.EvaluationData.Point, s.Point)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rendered, &jpeg.Options{Quality: 90}); err != nil {
		log.Printf("Err [encode] %v", err)
		c.SetStatusCode(http.StatusInternalServerError)
		return
	}
	c.SetContentType("image/jpeg")
	c.Write(buf.Bytes())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
