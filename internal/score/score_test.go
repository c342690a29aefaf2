package score

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
)

func TestPointDistance(t *testing.T) {
	convey.Convey("distance is symmetric and zero only at identity", t, func() {
		a := dataset.Point{X: 3, Y: 4}
		b := dataset.Point{X: 0, Y: 0}

		convey.So(PointDistance(a, b), convey.ShouldEqual, 5.0)
		convey.So(PointDistance(b, a), convey.ShouldEqual, PointDistance(a, b))
		convey.So(PointDistance(a, a), convey.ShouldEqual, 0.0)
	})
}

func TestScoreMaskGuess(t *testing.T) {
	convey.Convey("given a 5x5 grid with a single true cell at (2,2)", t, func() {
		m := mask.New(5, 5)
		m.Set(2, 2, true)

		convey.Convey("a guess on the cell is contained with distance 0", func() {
			rec := ScoreMaskGuess(m, dataset.Point{X: 2, Y: 2})
			convey.So(rec.InMask, convey.ShouldEqual, 1)
			convey.So(rec.Distance, convey.ShouldEqual, 0.0)
		})

		convey.Convey("a guess at (0,0) is sqrt(8) away", func() {
			rec := ScoreMaskGuess(m, dataset.Point{X: 0, Y: 0})
			convey.So(rec.InMask, convey.ShouldEqual, 0)
			convey.So(rec.Distance, convey.ShouldAlmostEqual, math.Sqrt(8), 1e-9)
		})
	})

	convey.Convey("the minimum distance matches a brute-force reference", t, func() {
		m := mask.New(7, 7)
		cells := [][2]int{{1, 5}, {4, 2}, {6, 6}}
		for _, c := range cells {
			m.Set(c[0], c[1], true)
		}

		guess := dataset.Point{X: 0, Y: 1}
		want := math.Inf(1)
		for _, c := range cells {
			d := math.Hypot(float64(c[0]-guess.X), float64(c[1]-guess.Y))
			if d < want {
				want = d
			}
		}

		rec := ScoreMaskGuess(m, guess)
		convey.So(rec.Distance, convey.ShouldAlmostEqual, want, 1e-9)
	})

	convey.Convey("an empty mask yields infinite distance", t, func() {
		m := mask.New(3, 3)
		rec := ScoreMaskGuess(m, dataset.Point{X: 1, Y: 1})
		convey.So(math.IsInf(float64(rec.Distance), 1), convey.ShouldBeTrue)
	})
}

func TestSummarize(t *testing.T) {
	convey.Convey("accuracy counts guesses within the 50 pixel threshold", t, func() {
		s := SummarizeDistances([]float64{10, 60, 40, 100})
		convey.So(s.TotalGuesses, convey.ShouldEqual, 4)
		convey.So(s.AccurateGuesses, convey.ShouldEqual, 2)
		convey.So(s.AccuracyRate, convey.ShouldEqual, 0.5)
		convey.So(s.AverageDistance, convey.ShouldAlmostEqual, 52.5, 1e-9)
		convey.So(s.MinDistance, convey.ShouldEqual, 10.0)
		convey.So(s.MaxDistance, convey.ShouldEqual, 100.0)
	})

	convey.Convey("categorical answers stay out of the accuracy denominator", t, func() {
		records := []dataset.GuessRecord{
			{Distance: 10},
			CannotTell(),
			{Distance: 60},
			MultipleMatch(),
			MultipleMatch(),
		}
		s := Summarize(records)
		convey.So(s.TotalGuesses, convey.ShouldEqual, 2)
		convey.So(s.AccurateGuesses, convey.ShouldEqual, 1)
		convey.So(s.AccuracyRate, convey.ShouldEqual, 0.5)
		convey.So(s.CannotTell, convey.ShouldEqual, 1)
		convey.So(s.MultipleMatch, convey.ShouldEqual, 2)
	})

	convey.Convey("an empty batch has zero rates, not NaN", t, func() {
		s := Summarize(nil)
		convey.So(s.AccuracyRate, convey.ShouldEqual, 0.0)
		convey.So(s.AverageDistance, convey.ShouldEqual, 0.0)
	})
}

func TestSummaryWithInfiniteDistanceMarshals(t *testing.T) {
	convey.Convey("a batch containing an empty-mask guess still serializes", t, func() {
		records := []dataset.GuessRecord{
			{Distance: 20},
			{Distance: dataset.Distance(math.Inf(1))},
		}
		s := Summarize(records)
		convey.So(math.IsInf(float64(s.AverageDistance), 1), convey.ShouldBeTrue)
		convey.So(math.IsInf(float64(s.MaxDistance), 1), convey.ShouldBeTrue)

		data, err := json.Marshal(s)
		convey.So(err, convey.ShouldBeNil)
		convey.So(strings.Contains(string(data), `"Infinity"`), convey.ShouldBeTrue)
	})
}
