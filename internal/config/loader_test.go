package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/scobo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 1000)
				convey.So(cfg.ShutdownGraceSeconds, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCOBO_ADDR", ":8080")
			_ = os.Setenv("SCOBO_EVENT_LOG_PATH", "/tmp/scobo/events.json")
			_ = os.Setenv("SCOBO_QUEUE_CAPACITY", "500")
			_ = os.Setenv("SCOBO_POLL_INTERVAL_MS", "250")
			_ = os.Setenv("SCOBO_SHUTDOWN_GRACE_SECONDS", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventLogPath, convey.ShouldEqual, "/tmp/scobo/events.json")
				convey.So(cfg.QueueCapacity, convey.ShouldEqual, 500)
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 250)
				convey.So(cfg.ShutdownGraceSeconds, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
# scobo settings
addr: ":9090"
bot_name: "other_bot"
poll_interval_ms: 100
writer_niceness: 5
`)
			_ = os.Setenv("SCOBO_CONFIG", tmpFile)
			_ = os.Setenv("SCOBO_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 100)
				convey.So(cfg.WriterNiceness, convey.ShouldEqual, 5)
			})

			convey.Convey("Then a renamed bot gets its own default log path", func() {
				convey.So(filepath.Base(cfg.EventLogPath), convey.ShouldEqual, "other_bot.json")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("SCOBO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SCOBO_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SCOBO_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When metrics settings come from the environment", func() {
			_ = os.Setenv("SCOBO_METRICS_ENABLED", "false")
			_ = os.Setenv("SCOBO_METRICS_REFRESH_SECONDS", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsRefreshSeconds, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with a zero metrics refresh", func() {
			_ = os.Setenv("SCOBO_METRICS_REFRESH_SECONDS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a zero poll interval", func() {
			_ = os.Setenv("SCOBO_POLL_INTERVAL_MS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SCOBO_QUEUE_CAPACITY", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SCOBO_CONFIG",
		"SCOBO_ADDR",
		"SCOBO_BOT_NAME",
		"SCOBO_EVENT_LOG_PATH",
		"SCOBO_QUEUE_CAPACITY",
		"SCOBO_POLL_INTERVAL_MS",
		"SCOBO_SHUTDOWN_GRACE_SECONDS",
		"SCOBO_WRITER_NICENESS",
		"SCOBO_METRICS_ENABLED",
		"SCOBO_METRICS_REFRESH_SECONDS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scobo-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
