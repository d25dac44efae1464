package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/crease/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.TelemetryQueueSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.PrematchLeadMinutes, convey.ShouldEqual, 180)
			convey.So(cfg.RescanIntervalSeconds, convey.ShouldEqual, 60)
			convey.So(cfg.EventChannel, convey.ShouldEqual, "contest_events")
			convey.So(cfg.SettlementLockTTLSeconds, convey.ShouldEqual, 300)
		})

		convey.Convey("Then external collaborators default to in-process", func() {
			convey.So(cfg.PostgresDSN, convey.ShouldBeEmpty)
			convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
		})
	})
}
