package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestKeyPaths(t *testing.T) {
	convey.Convey("dot-separated paths navigate nested maps", t, func() {
		path := writeConfig(t, t.TempDir(), `
api:
  google:
    key: abc123
audio:
  sample_rate: 16000
`)
		cfg, err := Load(path)
		convey.So(err, convey.ShouldBeNil)

		key, err := cfg.String("api.google.key")
		convey.So(err, convey.ShouldBeNil)
		convey.So(key, convey.ShouldEqual, "abc123")

		rate, err := cfg.Value("audio.sample_rate")
		convey.So(err, convey.ShouldBeNil)
		convey.So(rate, convey.ShouldEqual, 16000)

		_, err = cfg.String("api.missing.key")
		convey.So(err, convey.ShouldNotBeNil)

		_, err = cfg.String("audio.sample_rate")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestEnvExpansion(t *testing.T) {
	convey.Convey("${VAR} references resolve from the environment", t, func() {
		t.Setenv("PIXELPOINT_TEST_KEY", "secret")
		path := writeConfig(t, t.TempDir(), `
api:
  key: ${PIXELPOINT_TEST_KEY}
  endpoint: https://${PIXELPOINT_TEST_HOST_UNSET}/v1
paths:
  - ${PIXELPOINT_TEST_KEY}/data
`)
		cfg, err := Load(path)
		convey.So(err, convey.ShouldBeNil)

		key, err := cfg.String("api.key")
		convey.So(err, convey.ShouldBeNil)
		convey.So(key, convey.ShouldEqual, "secret")

		convey.Convey("unset variables stay verbatim", func() {
			endpoint, err := cfg.String("api.endpoint")
			convey.So(err, convey.ShouldBeNil)
			convey.So(endpoint, convey.ShouldEqual, "https://${PIXELPOINT_TEST_HOST_UNSET}/v1")
		})

		convey.Convey("expansion reaches into lists", func() {
			paths, err := cfg.Value("paths")
			convey.So(err, convey.ShouldBeNil)
			convey.So(paths, convey.ShouldResemble, []interface{}{"secret/data"})
		})
	})
}

func TestDotEnvSibling(t *testing.T) {
	convey.Convey("a .env next to the config feeds the expansion", t, func() {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PIXELPOINT_DOTENV_VAL=from-dotenv\n"), 0644); err != nil {
			t.Fatal(err)
		}
		defer os.Unsetenv("PIXELPOINT_DOTENV_VAL")

		path := writeConfig(t, dir, "token: ${PIXELPOINT_DOTENV_VAL}\n")
		cfg, err := Load(path)
		convey.So(err, convey.ShouldBeNil)

		token, err := cfg.String("token")
		convey.So(err, convey.ShouldBeNil)
		convey.So(token, convey.ShouldEqual, "from-dotenv")
	})
}

func TestLoadFailures(t *testing.T) {
	convey.Convey("missing and malformed files are errors", t, func() {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		convey.So(err, convey.ShouldNotBeNil)

		path := writeConfig(t, t.TempDir(), "key: [unclosed\n")
		_, err = Load(path)
		convey.So(err, convey.ShouldNotBeNil)
	})
}
