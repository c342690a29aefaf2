package interact

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/bdougie/pixelpoint/internal/dataset"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func selectionConsole(input string, out *bytes.Buffer) *SelectionConsole {
	return &SelectionConsole{
		console:  newConsole(strings.NewReader(input), out),
		ImageDir: "images",
		Options:  DefaultSelectionOptions,
		Logger:   testLogger(),
		shuffle:  func([]string) {}, // fixed order for assertions
	}
}

func TestSelectionByNumber(t *testing.T) {
	convey.Convey("the option number maps to the displayed order", t, func() {
		var out bytes.Buffer
		sc := selectionConsole("2\n", &out)
		s := dataset.Sample{ImageID: "img1", MaskPath: "m1.png"}

		outcome, err := sc.Present(context.Background(), s, 1, 3)
		convey.So(err, convey.ShouldBeNil)
		convey.So(outcome.Selection, convey.ShouldNotBeNil)
		convey.So(outcome.Selection.Choice, convey.ShouldEqual, "Small")
		convey.So(outcome.Selection.SampleID, convey.ShouldEqual, "m1")
		convey.So(outcome.Selection.CreatedAt.IsZero(), convey.ShouldBeFalse)
	})
}

func TestSelectionByText(t *testing.T) {
	convey.Convey("typing the option text works case-insensitively", t, func() {
		var out bytes.Buffer
		sc := selectionConsole("light gray\n", &out)
		s := dataset.Sample{ImageID: "img1"}

		outcome, err := sc.Present(context.Background(), s, 1, 1)
		convey.So(err, convey.ShouldBeNil)
		convey.So(outcome.Selection.Choice, convey.ShouldEqual, "Light Gray")
	})

	convey.Convey("an unlisted answer reprompts until a valid one", t, func() {
		var out bytes.Buffer
		sc := selectionConsole("blue\n9\n1\n", &out)
		s := dataset.Sample{ImageID: "img1"}

		outcome, err := sc.Present(context.Background(), s, 1, 1)
		convey.So(err, convey.ShouldBeNil)
		convey.So(outcome.Selection.Choice, convey.ShouldEqual, "Left")
	})
}

func TestSelectionQuit(t *testing.T) {
	convey.Convey("quit cancels only after confirmation", t, func() {
		var out bytes.Buffer
		sc := selectionConsole("quit\nn\n3\n", &out)
		s := dataset.Sample{ImageID: "img1"}

		outcome, err := sc.Present(context.Background(), s, 1, 1)
		convey.So(err, convey.ShouldBeNil)
		convey.So(outcome.Cancelled, convey.ShouldBeFalse)
		convey.So(outcome.Selection.Choice, convey.ShouldEqual, "Light Gray")
	})

	convey.Convey("a confirmed quit cancels the batch", t, func() {
		var out bytes.Buffer
		sc := selectionConsole("quit\ny\n", &out)
		s := dataset.Sample{ImageID: "img1"}

		outcome, err := sc.Present(context.Background(), s, 1, 1)
		convey.So(err, convey.ShouldBeNil)
		convey.So(outcome.Cancelled, convey.ShouldBeTrue)
	})
}

func TestMatchOption(t *testing.T) {
	convey.Convey("numbers outside the displayed range are rejected", t, func() {
		shown := []string{"A", "B"}
		_, ok := matchOption("0", shown)
		convey.So(ok, convey.ShouldBeFalse)
		_, ok = matchOption("3", shown)
		convey.So(ok, convey.ShouldBeFalse)

		choice, ok := matchOption("2", shown)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(choice, convey.ShouldEqual, "B")
	})
}

func TestParsePointClamping(t *testing.T) {
	convey.Convey("coordinates clamp to the image bounds", t, func() {
		p, ok := parsePoint("700, -3", 640, 480)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(p, convey.ShouldResemble, dataset.Point{X: 639, Y: 0})

		_, ok = parsePoint("1;2", 640, 480)
		convey.So(ok, convey.ShouldBeFalse)
	})
}
