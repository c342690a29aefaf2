package annotator

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestResolveOllama(t *testing.T) {
	convey.Convey("empty settings fall back to the local instance", t, func() {
		host, port := ResolveOllama("", 0)
		convey.So(host, convey.ShouldEqual, "http://localhost")
		convey.So(port, convey.ShouldEqual, 11434)
	})

	convey.Convey("explicit settings pass through unchanged", t, func() {
		host, port := ResolveOllama("http://gpu-box", 9000)
		convey.So(host, convey.ShouldEqual, "http://gpu-box")
		convey.So(port, convey.ShouldEqual, 9000)
	})
}
