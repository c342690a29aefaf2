package annotator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agent-api/core/pkg/agent"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/interact"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/results"
)

const maxWorkers = 4 // Adjust based on your CPU cores

// Annotator pre-annotates a dataset with model-generated candidate
// descriptions before human annotation starts. Unlike the human batch
// loop, samples are processed by a fixed worker pool.
type Annotator struct {
	agent  *agent.DefaultAgent
	writer *results.Writer
	logger *slog.Logger
}

// New returns an annotator writing through the given result writer.
func New(a *agent.DefaultAgent, writer *results.Writer, logger *slog.Logger) *Annotator {
	return &Annotator{agent: a, writer: writer, logger: logger}
}

type workItem struct {
	sample   dataset.Sample
	position int
	total    int
}

// AnnotateBatch describes every sample not already covered by a result
// file in the output directory.
func (a *Annotator) AnnotateBatch(ctx context.Context, samples []dataset.Sample, imageDir string) error {
	done := resume.Completed(a.writer.Dir(), resume.Collection)
	var pending []dataset.Sample
	for _, s := range samples {
		if !done[s.MaskID()] {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		a.logger.Info("all samples already annotated, nothing to do")
		return nil
	}
	fmt.Printf("Found %d samples to annotate\n", len(pending))

	workChan := make(chan workItem, len(pending))
	errorsChan := make(chan error, len(pending))

	var wg sync.WaitGroup

	remaining := atomic.Int64{}
	remaining.Store(int64(len(pending)))

	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workChan {
				if err := a.annotateSample(ctx, work.sample, imageDir); err != nil {
					errorsChan <- fmt.Errorf("sample %d/%d failed: %v", work.position, work.total, err)
					continue
				}
				left := remaining.Add(-1)
				fmt.Printf("\rRemaining samples to annotate: %d/%d", left, len(pending))
			}
		}()
	}

	go func() {
		for i, s := range pending {
			workChan <- workItem{sample: s, position: i + 1, total: len(pending)}
		}
		close(workChan)
	}()

	wg.Wait()
	close(errorsChan)
	fmt.Println()

	var errorMessages []string
	for err := range errorsChan {
		errorMessages = append(errorMessages, err.Error())
	}
	if len(errorMessages) > 0 {
		return fmt.Errorf("encountered errors during annotation: %v", strings.Join(errorMessages, "; "))
	}
	return nil
}

func (a *Annotator) annotateSample(ctx context.Context, s dataset.Sample, imageDir string) error {
	imagePath := interact.ImagePathFor(s, imageDir)

	response, err := a.agent.Run(
		ctx,
		agent.WithInput("Describe the object in the red box so it can be uniquely identified."),
		agent.WithImagePath(imagePath),
	)
	if err != nil {
		return err
	}
	if len(response.Messages) == 0 {
		return fmt.Errorf("no response messages received from model")
	}
	content := response.Messages[len(response.Messages)-1].Content

	rec := dataset.DescriptionRecord{
		SampleID:  s.MaskID(),
		Text:      strings.TrimSpace(content),
		CreatedAt: time.Now(),
	}
	return a.writer.WriteDescription(s, rec)
}
