// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env on top.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// TelemetryQueueSize bounds the in-memory telemetry queue.
	TelemetryQueueSize int `koanf:"telemetry_queue_size"`

	// WorkerCount sets the number of telemetry workers. Updates for one
	// match always land on the same worker, so this also bounds how many
	// matches progress concurrently.
	WorkerCount int `koanf:"worker_count"`

	// MaxLeaderboardLimit caps the leaderboard page size.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// PrematchLeadMinutes is how long before the scheduled start a
	// prematch contest opens for joining.
	PrematchLeadMinutes int `koanf:"prematch_lead_minutes"`

	// RescanIntervalSeconds drives the sweep that re-triggers settlement
	// for contests stuck in calculating. Zero disables the sweep.
	RescanIntervalSeconds int `koanf:"rescan_interval_seconds"`

	// SettlementGuardSize bounds the in-flight settlement tracker.
	SettlementGuardSize int `koanf:"settlement_guard_size"`

	// PostgresDSN selects the Postgres store when set. Empty keeps the
	// in-memory store, which is what tests and local runs use.
	PostgresDSN string `koanf:"postgres_dsn"`

	// Redis settings for the status-change publisher and settlement lock.
	// RedisAddr empty keeps the in-process publisher.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// EventChannel is the Redis channel contest status events publish to.
	EventChannel string `koanf:"event_channel"`

	// SettlementLockTTLSeconds bounds how long a crashed settlement run
	// can hold the cross-instance lock.
	SettlementLockTTLSeconds int `koanf:"settlement_lock_ttl_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		Addr:                     ":9080",
		TelemetryQueueSize:       50_000,
		WorkerCount:              runtime.NumCPU() * 4,
		MaxLeaderboardLimit:      100,
		PrematchLeadMinutes:      180,
		RescanIntervalSeconds:    60,
		SettlementGuardSize:      10_000,
		PostgresDSN:              "",
		RedisAddr:                "",
		RedisPassword:            "",
		RedisDB:                  0,
		EventChannel:             "contest_events",
		SettlementLockTTLSeconds: 300,
	}
}
