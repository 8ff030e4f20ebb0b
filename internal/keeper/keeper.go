package keeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Keeper drives the supervision loop for a single miner process:
// start, settle, monitor liveness and hashrate, kill, repeat. It owns
// the current process handle and the last-start timestamp exclusively;
// no other goroutine touches them.
type Keeper struct {
	config Config

	launch     Launcher
	prober     Prober
	runCommand CommandRunner
	observer   Observer
	now        func() time.Time

	process   Process
	lastStart time.Time

	log *zap.Logger
}

// Params bundles the keeper's collaborators.
type Params struct {
	// Config is the restart policy configuration
	Config Config

	// Launcher starts a new miner process
	Launcher Launcher

	// Prober reads the miner's hashrate
	Prober Prober

	// Runner dispatches cold start commands. Defaults to the system
	// shell.
	Runner CommandRunner

	// Observer receives lifecycle events. Optional.
	Observer Observer

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Log is the logger to use for the keeper
	Log *zap.Logger
}

func New(params Params) *Keeper {
	if params.Runner == nil {
		params.Runner = dispatchShellCommand
	}

	if params.Observer == nil {
		params.Observer = nopObserver{}
	}

	if params.Now == nil {
		params.Now = time.Now
	}

	return &Keeper{
		config:     params.Config,
		launch:     params.Launcher,
		prober:     params.Prober,
		runCommand: params.Runner,
		observer:   params.Observer,
		now:        params.Now,
		log:        params.Log.Named("keeper"),
	}
}

// Run executes restart cycles until the context is cancelled. There is
// no other way out: every failure mode of the miner or its status
// endpoint is absorbed into the next cycle.
func (k *Keeper) Run(ctx context.Context) error {
	for {
		if err := k.cycle(ctx); err != nil {
			return err
		}
	}
}

// cycle performs one pass of the state machine: STARTING, SETTLING,
// MONITORING, STOPPING. The only errors it returns are context errors.
func (k *Keeper) cycle(ctx context.Context) error {
	if err := k.start(ctx); err != nil {
		return err
	}

	if k.process == nil {
		// launch failed, back off and try a fresh cycle
		return sleepCtx(ctx, k.config.KillGrace)
	}

	k.log.Info("settling before first health check",
		zap.Duration("settle_time", k.config.SettleTime),
	)

	if err := sleepCtx(ctx, k.config.SettleTime); err != nil {
		return err
	}

	reason, err := k.monitor(ctx)
	if err != nil {
		return err
	}

	k.observer.MinerUp(false)
	k.observer.Restart(reason)

	return k.stop(ctx)
}

// start evaluates the restart policy, runs the reset sequence when a
// cold start is due, and launches the miner. On launch failure the
// process handle is left nil and the failure is absorbed by the caller.
func (k *Keeper) start(ctx context.Context) error {
	now := k.now()

	if NeedsColdStart(k.lastStart, now, k.config.HotRestartThreshold) {
		if k.lastStart.IsZero() {
			k.log.Info("first start in current session, running cold start sequence")
		} else {
			k.log.Info("last start was too recent, running cold start sequence",
				zap.Duration("since_last_start", now.Sub(k.lastStart)),
				zap.Duration("threshold", k.config.HotRestartThreshold),
			)
		}

		if err := k.coldStart(ctx); err != nil {
			return err
		}
	} else {
		k.log.Info("hot restarting miner")
	}

	process, err := k.launch()
	if err != nil {
		k.log.Error("failed to launch miner", zap.Error(err))
		k.observer.Restart(ReasonLaunchFailed)
		k.process = nil
		return nil
	}

	k.process = process
	k.lastStart = k.now()
	k.observer.MinerUp(true)

	k.log.Info("miner launched",
		zap.Int("pid", process.Pid()),
		zap.Duration("max_run_time", k.config.MaxRunTime),
	)

	return nil
}

// monitor polls the miner until its run time expires or it turns
// unhealthy, and returns the restart reason.
func (k *Keeper) monitor(ctx context.Context) (string, error) {
	for !RunTimeExpired(k.lastStart, k.now(), k.config.MaxRunTime) {
		if err := sleepCtx(ctx, k.config.PollInterval); err != nil {
			return "", err
		}

		if !k.process.Alive() {
			k.log.Error("miner process is dead, restarting")
			return ReasonDied, nil
		}

		hashrate := k.prober.Hashrate(ctx)
		k.observer.ObserveHashrate(hashrate)

		switch Classify(hashrate, k.config.TargetHashrate) {
		case HealthProbeFailed:
			k.log.Error("failed to read miner hashrate, restarting")
			return ReasonProbeFailed, nil
		case HealthBelowTarget:
			k.log.Error("miner hashrate below target, restarting",
				zap.Float64("hashrate", hashrate),
				zap.Float64("target", k.config.TargetHashrate),
			)
			return ReasonBelowTarget, nil
		default:
			k.log.Info("miner hashrate ok",
				zap.Float64("hashrate", hashrate),
				zap.Float64("target", k.config.TargetHashrate),
			)
		}
	}

	k.log.Info("max run time reached, cycling miner")

	return ReasonExpired, nil
}

// stop kills the miner tree if it is still running and waits the grace
// period. A miner that already died on its own needs neither.
func (k *Keeper) stop(ctx context.Context) error {
	if !k.process.Alive() {
		return nil
	}

	k.process.Kill()

	k.log.Info("waiting for process tree to exit",
		zap.Duration("kill_grace", k.config.KillGrace),
	)

	return sleepCtx(ctx, k.config.KillGrace)
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
