// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CommitAttempts bounds the optimistic-lock retry loop on
	// join/leave/vouch operations before ConcurrencyConflict surfaces.
	CommitAttempts int `koanf:"commit_attempts"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkerCount sets the number of notification dispatch workers.
	NotifyWorkerCount int `koanf:"notify_worker_count"`

	// VouchGuardSize sets the size of the vouch idempotency guard.
	VouchGuardSize int `koanf:"vouch_guard_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		CommitAttempts:      5,
		NotifyQueueSize:     10_000,
		NotifyWorkerCount:   runtime.NumCPU() * 2,
		VouchGuardSize:      50_000,
		MaxLeaderboardLimit: 100,
	}
}
