package resume

import (
	"os"
	"strings"

	"github.com/bdougie/pixelpoint/internal/dataset"
)

// Convention is the fixed filename scheme tying a result file back to
// the sample it completes.
type Convention struct {
	Prefix string
	Suffix string
}

// Collection results are written as <maskid>.json.
var Collection = Convention{Suffix: ".json"}

// Evaluation results are written as mask_<maskid>.json.
var Evaluation = Convention{Prefix: "mask_", Suffix: ".json"}

// Selection results are written as selection_<maskid>.json.
var Selection = Convention{Prefix: "selection_", Suffix: ".json"}

// Filename derives the result filename for a sample identifier.
func (c Convention) Filename(id string) string {
	return c.Prefix + id + c.Suffix
}

// ID recovers the sample identifier from a result filename. The second
// return is false for filenames that don't follow the convention.
func (c Convention) ID(filename string) (string, bool) {
	if !strings.HasSuffix(filename, c.Suffix) || !strings.HasPrefix(filename, c.Prefix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(filename, c.Prefix), c.Suffix)
	if id == "" {
		return "", false
	}
	return id, true
}

// Completed scans outputDir and returns the set of sample identifiers
// that already have a result file. A missing directory yields an empty
// set; filenames that don't match the convention are ignored.
func Completed(outputDir string, conv Convention) map[string]bool {
	done := make(map[string]bool)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return done
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := conv.ID(entry.Name()); ok {
			done[id] = true
		}
	}
	return done
}

// StartIndex returns the index of the first sample in sequence order
// without a result file in outputDir, or len(samples) when every sample
// is complete. Purely a function of directory contents and the sample
// list, so a restarted process resumes correctly.
func StartIndex(samples []dataset.Sample, outputDir string, conv Convention) int {
	done := Completed(outputDir, conv)
	for i, s := range samples {
		if !done[s.MaskID()] {
			return i
		}
	}
	return len(samples)
}
