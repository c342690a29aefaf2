package results

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/mask"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/score"
)

func TestGuessRoundTrip(t *testing.T) {
	convey.Convey("a written evaluation document reads back field for field", t, func() {
		writer, err := NewWriter(t.TempDir(), resume.Evaluation)
		convey.So(err, convey.ShouldBeNil)

		s := dataset.Sample{
			ImageID:     "img7",
			MaskPath:    "region_7.png",
			UserTextDes: "the red mug next to the laptop",
		}
		rec := dataset.GuessRecord{
			Point:    &dataset.Point{X: 120, Y: 48},
			Distance: 13.2,
			InMask:   0,
		}

		convey.So(writer.WriteGuess(s, rec), convey.ShouldBeNil)

		got, err := ReadGuess(writer.Path("region_7"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(got.SampleData, convey.ShouldResemble, s)
		convey.So(got.EvaluationData, convey.ShouldResemble, rec)
	})
}

func TestDescriptionMerge(t *testing.T) {
	convey.Convey("descriptions are merged into the sample document", t, func() {
		writer, err := NewWriter(t.TempDir(), resume.Collection)
		convey.So(err, convey.ShouldBeNil)

		s := dataset.Sample{ImageID: "img1", MaskPath: "region_1.png"}
		rec := dataset.DescriptionRecord{
			SampleID:        "region_1",
			Text:            "the leftmost chair",
			AudioTranscript: "the left most chair",
			AudioFile:       filepath.Join("somewhere", "region_1_ab12.wav"),
			CreatedAt:       time.Now(),
		}

		convey.So(writer.WriteDescription(s, rec), convey.ShouldBeNil)

		got, err := ReadSample(writer.Path("region_1"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(got.UserTextDes, convey.ShouldEqual, "the leftmost chair")
		convey.So(got.UserAudioDes, convey.ShouldEqual, "the left most chair")
		// only the basename of the audio file is stored
		convey.So(got.UserAudioFile, convey.ShouldEqual, "region_1_ab12.wav")
		convey.So(got.ImageID, convey.ShouldEqual, "img1")
	})
}

func TestOverwrite(t *testing.T) {
	convey.Convey("re-annotating the same sample replaces the result file", t, func() {
		dir := t.TempDir()
		writer, err := NewWriter(dir, resume.Evaluation)
		convey.So(err, convey.ShouldBeNil)

		s := dataset.Sample{ImageID: "img1", MaskPath: "a.png"}
		first := dataset.GuessRecord{Point: &dataset.Point{X: 1, Y: 1}, Distance: 99}
		second := dataset.GuessRecord{Point: &dataset.Point{X: 5, Y: 5}, Distance: 2}

		convey.So(writer.WriteGuess(s, first), convey.ShouldBeNil)
		convey.So(writer.WriteGuess(s, second), convey.ShouldBeNil)

		got, err := ReadGuess(writer.Path("a"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(got.EvaluationData, convey.ShouldResemble, second)

		entries, err := os.ReadDir(dir)
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(entries), convey.ShouldEqual, 1)
	})
}

func TestSessionRoundTrip(t *testing.T) {
	convey.Convey("session documents carry stats and a timestamped name", t, func() {
		dir := t.TempDir()
		result := SessionResult{
			ImagePath:       "scene.jpg",
			JSONPath:        "scene_pixels.json",
			ImageDimensions: [2]int{640, 480},
			Statistics:      score.SummarizeDistances([]float64{10, 60}),
			EvaluationData: []SessionGuess{
				{
					Description:     "the door handle",
					TruePosition:    dataset.Point{X: 100, Y: 200},
					GuessedPosition: dataset.Point{X: 104, Y: 197},
					Distance:        5,
				},
			},
		}

		now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
		path, err := WriteSession(dir, "scene", result, now)
		convey.So(err, convey.ShouldBeNil)
		convey.So(filepath.Base(path), convey.ShouldEqual, "rel_scene_20250601_093000.json")

		got, err := ReadSession(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldResemble, &result)
	})
}

func TestPixelDescriptionsFilename(t *testing.T) {
	convey.Convey("collection session documents round-trip with a timestamped name", t, func() {
		dir := t.TempDir()
		session := dataset.PixelSession{
			ImagePath: "scene.jpg",
			PixelData: []dataset.PixelEntry{
				{Description: "the door handle", Position: dataset.Point{X: 100, Y: 200}},
			},
		}

		now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
		path, err := WritePixelDescriptions(dir, "scene", session, now)
		convey.So(err, convey.ShouldBeNil)
		convey.So(filepath.Base(path), convey.ShouldEqual, "pixel_descriptions_scene_20250601_093000.json")

		got, err := dataset.LoadPixelSession(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldResemble, &session)
	})
}

func TestInfiniteDistancePersists(t *testing.T) {
	convey.Convey("a guess scored against an empty mask still writes and reads back", t, func() {
		writer, err := NewWriter(t.TempDir(), resume.Evaluation)
		convey.So(err, convey.ShouldBeNil)

		s := dataset.Sample{ImageID: "a", MaskPath: "a.png"}
		m := mask.New(4, 4)
		rec := score.ScoreMaskGuess(m, dataset.Point{X: 1, Y: 1})
		convey.So(math.IsInf(float64(rec.Distance), 1), convey.ShouldBeTrue)

		convey.So(writer.WriteGuess(s, rec), convey.ShouldBeNil)

		got, err := ReadGuess(writer.Path("a"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(math.IsInf(float64(got.EvaluationData.Distance), 1), convey.ShouldBeTrue)
		convey.So(got.EvaluationData.InMask, convey.ShouldEqual, 0)
	})
}

func TestSelectionRoundTrip(t *testing.T) {
	convey.Convey("a written selection document reads back field for field", t, func() {
		writer, err := NewWriter(t.TempDir(), resume.Selection)
		convey.So(err, convey.ShouldBeNil)

		s := dataset.Sample{ImageID: "img7", MaskPath: "m7.png"}
		rec := dataset.SelectionRecord{
			SampleID:  "m7",
			Choice:    "Light Gray",
			CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		}
		convey.So(writer.WriteSelection(s, rec), convey.ShouldBeNil)
		convey.So(filepath.Base(writer.Path("m7")), convey.ShouldEqual, "selection_m7.json")

		got, err := ReadSelection(writer.Path("m7"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(got.EvaluationData, convey.ShouldResemble, rec)
		convey.So(got.SampleData.ImageID, convey.ShouldEqual, "img7")
	})
}
