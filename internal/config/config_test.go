package config_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/scobo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BotName, convey.ShouldEqual, "scobo_bot")
			convey.So(cfg.QueueCapacity, convey.ShouldEqual, 0)
			convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 1000)
			convey.So(cfg.ShutdownGraceSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.WriterNiceness, convey.ShouldEqual, 10)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefreshSeconds, convey.ShouldEqual, 10)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the event log should live in the bot's data directory", func() {
			convey.So(filepath.Base(cfg.EventLogPath), convey.ShouldEqual, "scobo_bot.json")
			convey.So(strings.Contains(cfg.EventLogPath, filepath.Join(".local", "share", "scobo_bot")), convey.ShouldBeTrue)
		})
	})
}
