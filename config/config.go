package config

import (
	"github.com/minekeeper/minekeeper/internal/keeper"
	"github.com/minekeeper/minekeeper/internal/metrics"
	"github.com/minekeeper/minekeeper/internal/miner"
	"github.com/minekeeper/minekeeper/internal/probe"
	"github.com/minekeeper/minekeeper/util/conf"
)

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Miner describes the miner executable to supervise
	Miner miner.Spec `conf:"miner"`

	// API describes the miner's status endpoint
	API probe.Endpoint `conf:"api"`

	// Keeper is the restart policy configuration
	Keeper keeper.Config `conf:"keeper"`

	// Metrics is the metrics endpoint configuration
	Metrics metrics.Config `conf:"metrics"`
}

// DefaultConfig mirrors the timings miners have proven to need in the
// field: a couple of minutes to ramp up the hashrate, short poll
// intervals, periodic cycling well under an hour.
var DefaultConfig = conf.DefaultConfig{
	"api.host":    "127.0.0.1",
	"api.port":    4580,
	"api.page":    "api.json",
	"api.format":  "json",
	"api.parser":  "xmrstak",
	"api.timeout": "6s",

	"keeper.target_hashrate":       11500.0,
	"keeper.hot_restart_threshold": "5m",
	"keeper.max_run_time":          "40m",
	"keeper.settle_time":           "2m",
	"keeper.poll_interval":         "20s",
	"keeper.kill_grace":            "5s",
	"keeper.cold_start_delay":      "16s",

	"metrics.enabled": false,
	"metrics.host":    "127.0.0.1",
	"metrics.port":    9090,
}
