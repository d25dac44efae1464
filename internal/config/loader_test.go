package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/crease/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given a clean environment", t, func() {
		os.Unsetenv("CREASE_CONFIG")
		os.Unsetenv("CREASE_ADDR")
		os.Unsetenv("CREASE_WORKER_COUNT")

		convey.Convey("When loading with no file and no env overrides", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			})
		})

		convey.Convey("When env overrides are present", func() {
			os.Setenv("CREASE_ADDR", ":7070")
			os.Setenv("CREASE_WORKER_COUNT", "3")
			defer os.Unsetenv("CREASE_ADDR")
			defer os.Unsetenv("CREASE_WORKER_COUNT")

			cfg, err := config.Load(context.Background())

			convey.Convey("Then env wins over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "crease.yaml")
			body := []byte("addr: \":6060\"\nmax_leaderboard_limit: 25\n")
			convey.So(os.WriteFile(path, body, 0o600), convey.ShouldBeNil)
			os.Setenv("CREASE_CONFIG", path)
			defer os.Unsetenv("CREASE_CONFIG")

			cfg, err := config.Load(context.Background())

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
			})

			convey.Convey("And env still wins over the file", func() {
				os.Setenv("CREASE_ADDR", ":5050")
				defer os.Unsetenv("CREASE_ADDR")

				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
			})
		})

		convey.Convey("When validation fails", func() {
			os.Setenv("CREASE_TELEMETRY_QUEUE_SIZE", "0")
			defer os.Unsetenv("CREASE_TELEMETRY_QUEUE_SIZE")

			_, err := config.Load(context.Background())

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
