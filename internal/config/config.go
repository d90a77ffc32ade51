// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) builds a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and SCOBO_* env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"os"
	"path/filepath"
)

// DefaultBotName is the bot name as known to the chat network.
const DefaultBotName = "scobo_bot"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile rotates process logs into this file when set; stdout otherwise.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BotName is used for the default event log location.
	BotName string `koanf:"bot_name"`

	// EventLogPath is the append-only event log file.
	EventLogPath string `koanf:"event_log_path"`

	// QueueCapacity bounds the ingest queue. 0 means unbounded.
	QueueCapacity int `koanf:"queue_capacity"`

	// PollIntervalMS is how long the log writer sleeps on an empty queue.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// WriterNiceness is added to the nice value of the log writer thread.
	WriterNiceness int `koanf:"writer_niceness"`

	// ShutdownGraceSeconds bounds how long the writer may drain on shutdown.
	ShutdownGraceSeconds int `koanf:"shutdown_grace_seconds"`

	// DedupeSize is the number of transport update ids remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MetricsEnabled turns the Prometheus recorders on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshSeconds is how often the periodic gauges are refreshed.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds"`
}

// New creates a Config with defaults. The event log lives in
// $HOME/.local/share/<bot>/<bot>.json.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		BotName:               DefaultBotName,
		EventLogPath:          DefaultEventLogPath(DefaultBotName),
		QueueCapacity:         0,
		PollIntervalMS:        1000,
		WriterNiceness:        10,
		ShutdownGraceSeconds:  30,
		DedupeSize:            10_000,
		MetricsEnabled:        true,
		MetricsRefreshSeconds: 10,
	}
}

// DefaultEventLogPath returns the per-user data location of a bot's log.
func DefaultEventLogPath(botName string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".local", "share", botName, botName+".json")
}
