package keeper

import (
	"context"
	"time"
)

// Config holds the restart policy and timing knobs of the keeper.
type Config struct {
	// TargetHashrate is the hashrate floor. A healthy miner reports
	// at least this value on every poll.
	TargetHashrate float64 `conf:"target_hashrate"`

	// HotRestartThreshold is the minimum time since the last start
	// for a restart to skip the cold start sequence. A miner that
	// ran shorter than this likely crash-looped and needs the full
	// environment reset.
	HotRestartThreshold time.Duration `conf:"hot_restart_threshold"`

	// MaxRunTime is the maximum time the miner may run before it is
	// cycled, regardless of health.
	MaxRunTime time.Duration `conf:"max_run_time"`

	// SettleTime is how long to wait after a start before the first
	// health check, so the hashrate can ramp up.
	SettleTime time.Duration `conf:"settle_time"`

	// PollInterval is the delay between liveness/health polls.
	PollInterval time.Duration `conf:"poll_interval"`

	// KillGrace is how long to wait after a kill before relaunching,
	// giving the OS time to tear the process tree down.
	KillGrace time.Duration `conf:"kill_grace"`

	// ColdStartCommands are shell commands run, in order, before a
	// cold start. Typically device disable/enable and overclocking
	// tools. They are opaque to the keeper.
	ColdStartCommands []string `conf:"cold_start_commands"`

	// ColdStartDelay is the fixed sleep after each cold start command.
	ColdStartDelay time.Duration `conf:"cold_start_delay"`
}

// Process is the keeper's view of a running miner. Exactly one process
// is current at any time; the handle is replaced on every cycle.
type Process interface {
	// Pid returns the process id
	Pid() int

	// Alive reports liveness without blocking
	Alive() bool

	// Kill force-terminates the process and its descendants,
	// fire-and-forget
	Kill()
}

// Launcher starts a new miner process.
type Launcher func() (Process, error)

// Prober reports the miner's current hashrate. Any failure yields a
// value <= 0 instead of an error.
type Prober interface {
	Hashrate(ctx context.Context) float64
}

// Restart reasons, used for logging and metrics.
const (
	ReasonExpired      = "run_time_expired"
	ReasonDied         = "process_died"
	ReasonProbeFailed  = "probe_failed"
	ReasonBelowTarget  = "below_target"
	ReasonLaunchFailed = "launch_failed"
)

// Observer receives lifecycle events from the keeper. Implemented by
// the metrics recorder; a no-op implementation is used when metrics
// are disabled.
type Observer interface {
	MinerUp(up bool)
	ObserveHashrate(hashrate float64)
	ColdStart()
	Restart(reason string)
}

type nopObserver struct{}

func (nopObserver) MinerUp(bool)            {}
func (nopObserver) ObserveHashrate(float64) {}
func (nopObserver) ColdStart()              {}
func (nopObserver) Restart(string)          {}
