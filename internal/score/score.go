package score

import (
	"math"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
)

// AccuracyThreshold is the pixel distance under which a guess counts as
// accurate.
const AccuracyThreshold = 50.0

// PointDistance returns the Euclidean distance between two pixel
// coordinates.
func PointDistance(a, b dataset.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ScoreMaskGuess scores a coordinate guess against a mask: containment
// iff the guess indexes a foreground cell, distance 0 when contained and
// the minimum distance to the mask otherwise.
func ScoreMaskGuess(m *mask.Mask, guess dataset.Point) dataset.GuessRecord {
	p := guess
	rec := dataset.GuessRecord{Point: &p}
	if m.At(guess.X, guess.Y) {
		rec.InMask = 1
		rec.Distance = 0
	} else {
		rec.Distance = dataset.Distance(m.MinDistance(guess.X, guess.Y))
	}
	return rec
}

// CannotTell returns the record for the "cannot tell" categorical
// answer. Distance stays 0 for file compatibility; Summarize keeps these
// out of the distance stats.
func CannotTell() dataset.GuessRecord {
	return dataset.GuessRecord{CannotTell: 1}
}

// MultipleMatch returns the record for the "multiple match" categorical
// answer.
func MultipleMatch() dataset.GuessRecord {
	return dataset.GuessRecord{MultipleMatch: 1}
}

// Summary aggregates a batch of guesses. The distance statistics and
// accuracy rate cover coordinate guesses only; categorical answers are
// reported as separate counters.
type Summary struct {
	AverageDistance dataset.Distance `json:"average_distance"`
	MaxDistance     dataset.Distance `json:"max_distance"`
	MinDistance     dataset.Distance `json:"min_distance"`
	AccuracyRate    float64          `json:"accuracy_rate"`
	AccurateGuesses int     `json:"accurate_guesses"`
	TotalGuesses    int     `json:"total_guesses"`
	CannotTell      int     `json:"cannot_tell"`
	MultipleMatch   int     `json:"multiple_match"`
}

// Summarize computes batch statistics over a set of guess records.
func Summarize(records []dataset.GuessRecord) Summary {
	var s Summary
	sum := 0.0
	for _, rec := range records {
		if rec.CannotTell == 1 {
			s.CannotTell++
			continue
		}
		if rec.MultipleMatch == 1 {
			s.MultipleMatch++
			continue
		}
		if s.TotalGuesses == 0 {
			s.MaxDistance = rec.Distance
			s.MinDistance = rec.Distance
		} else {
			if rec.Distance > s.MaxDistance {
				s.MaxDistance = rec.Distance
			}
			if rec.Distance < s.MinDistance {
				s.MinDistance = rec.Distance
			}
		}
		sum += float64(rec.Distance)
		if rec.Distance <= AccuracyThreshold {
			s.AccurateGuesses++
		}
		s.TotalGuesses++
	}
	if s.TotalGuesses > 0 {
		s.AverageDistance = dataset.Distance(sum / float64(s.TotalGuesses))
		s.AccuracyRate = float64(s.AccurateGuesses) / float64(s.TotalGuesses)
	}
	return s
}

// SummarizeDistances is the convenience form used by the pixel tools,
// where every guess is a plain coordinate with a precomputed distance.
func SummarizeDistances(distances []float64) Summary {
	records := make([]dataset.GuessRecord, len(distances))
	for i, d := range distances {
		records[i] = dataset.GuessRecord{Distance: dataset.Distance(d)}
	}
	return Summarize(records)
}
