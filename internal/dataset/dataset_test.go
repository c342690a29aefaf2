package dataset

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestPointCodec(t *testing.T) {
	convey.Convey("points serialize as two-element arrays", t, func() {
		data, err := json.Marshal(Point{X: 120, Y: 45})
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldEqual, "[120,45]")

		var p Point
		convey.So(json.Unmarshal([]byte("[7,9]"), &p), convey.ShouldBeNil)
		convey.So(p, convey.ShouldResemble, Point{X: 7, Y: 9})

		convey.So(json.Unmarshal([]byte(`{"x":1}`), &p), convey.ShouldNotBeNil)
	})
}

func TestMaskID(t *testing.T) {
	convey.Convey("the mask id is the mask basename without extension", t, func() {
		s := Sample{ImageID: "scene_01", MaskPath: "masks/region_0034.png"}
		convey.So(s.MaskID(), convey.ShouldEqual, "region_0034")
	})

	convey.Convey("samples without a mask fall back to the image id", t, func() {
		s := Sample{ImageID: "scene_01"}
		convey.So(s.MaskID(), convey.ShouldEqual, "scene_01")
	})
}

func TestLoadJSONArray(t *testing.T) {
	convey.Convey("a JSON array file loads in order", t, func() {
		path := filepath.Join(t.TempDir(), "samples.json")
		doc := `[
			{"image_id": "a", "mask_path": "a_mask.png", "pixel_position": [3, 4]},
			{"image_id": "b"}
		]`
		convey.So(os.WriteFile(path, []byte(doc), 0644), convey.ShouldBeNil)

		samples, err := Load(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(samples), convey.ShouldEqual, 2)
		convey.So(samples[0].ImageID, convey.ShouldEqual, "a")
		convey.So(samples[0].Point, convey.ShouldResemble, &Point{X: 3, Y: 4})
		convey.So(samples[1].Point, convey.ShouldBeNil)
	})

	convey.Convey("a malformed file reports its path", t, func() {
		path := filepath.Join(t.TempDir(), "samples.json")
		convey.So(os.WriteFile(path, []byte("not json"), 0644), convey.ShouldBeNil)
		_, err := Load(path)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldContainSubstring, path)
	})

	convey.Convey("a missing file is an error", t, func() {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestLoadJSONL(t *testing.T) {
	convey.Convey("line-delimited files skip blank lines", t, func() {
		path := filepath.Join(t.TempDir(), "samples.jsonl")
		doc := `{"image_id": "a", "user_text_des": "the red cup"}

{"image_id": "b", "mask_path": "b.png"}
`
		convey.So(os.WriteFile(path, []byte(doc), 0644), convey.ShouldBeNil)

		samples, err := Load(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(samples), convey.ShouldEqual, 2)
		convey.So(samples[0].UserTextDes, convey.ShouldEqual, "the red cup")
		convey.So(samples[1].MaskID(), convey.ShouldEqual, "b")
	})

	convey.Convey("a bad line reports its line number", t, func() {
		path := filepath.Join(t.TempDir(), "samples.jsonl")
		doc := "{\"image_id\": \"a\"}\n{broken\n"
		convey.So(os.WriteFile(path, []byte(doc), 0644), convey.ShouldBeNil)
		_, err := Load(path)
		convey.So(err, convey.ShouldNotBeNil)
		convey.So(err.Error(), convey.ShouldContainSubstring, "line 2")
	})
}

func TestLoadPixelSession(t *testing.T) {
	convey.Convey("a session document loads with its entries", t, func() {
		path := filepath.Join(t.TempDir(), "session.json")
		doc := `{
			"image_path": "img/scene.jpg",
			"pixel_data": [
				{"description": "left chair", "pixel_position": [10, 20]},
				{"description": "window", "pixel_position": [200, 5]}
			]
		}`
		convey.So(os.WriteFile(path, []byte(doc), 0644), convey.ShouldBeNil)

		session, err := LoadPixelSession(path)
		convey.So(err, convey.ShouldBeNil)
		convey.So(session.ImagePath, convey.ShouldEqual, "img/scene.jpg")
		convey.So(len(session.PixelData), convey.ShouldEqual, 2)
		convey.So(session.PixelData[1].Position, convey.ShouldResemble, Point{X: 200, Y: 5})
	})
}

func TestSentinel(t *testing.T) {
	convey.Convey("only the categorical flags make a record a sentinel", t, func() {
		convey.So(GuessRecord{CannotTell: 1}.Sentinel(), convey.ShouldBeTrue)
		convey.So(GuessRecord{MultipleMatch: 1}.Sentinel(), convey.ShouldBeTrue)
		convey.So(GuessRecord{Point: &Point{X: 1, Y: 2}, Distance: 3}.Sentinel(), convey.ShouldBeFalse)
	})
}

func TestDistanceCodec(t *testing.T) {
	convey.Convey("finite distances serialize as plain numbers", t, func() {
		data, err := json.Marshal(Distance(12.5))
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldEqual, "12.5")

		var d Distance
		convey.So(json.Unmarshal([]byte("12.5"), &d), convey.ShouldBeNil)
		convey.So(float64(d), convey.ShouldEqual, 12.5)
	})

	convey.Convey("infinite distances round-trip through the string form", t, func() {
		data, err := json.Marshal(Distance(math.Inf(1)))
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(data), convey.ShouldEqual, `"Infinity"`)

		var d Distance
		convey.So(json.Unmarshal(data, &d), convey.ShouldBeNil)
		convey.So(math.IsInf(float64(d), 1), convey.ShouldBeTrue)

		convey.So(json.Unmarshal([]byte(`"-Infinity"`), &d), convey.ShouldBeNil)
		convey.So(math.IsInf(float64(d), -1), convey.ShouldBeTrue)
	})

	convey.Convey("anything else is rejected", t, func() {
		var d Distance
		convey.So(json.Unmarshal([]byte(`"near"`), &d), convey.ShouldNotBeNil)
	})
}
