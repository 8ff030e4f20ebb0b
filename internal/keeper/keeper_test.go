package keeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minekeeper/minekeeper/internal/keeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProcess is a keeper.Process controlled by the test.
type fakeProcess struct {
	mu     sync.Mutex
	alive  bool
	killed bool
}

func (p *fakeProcess) Pid() int { return 4242 }

func (p *fakeProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *fakeProcess) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	p.alive = false
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// launchRecorder fakes the miner launcher and remembers every process
// it handed out.
type launchRecorder struct {
	mu    sync.Mutex
	procs []*fakeProcess

	spawnAlive bool
	err        error
}

func (l *launchRecorder) launch() (keeper.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}

	p := &fakeProcess{alive: l.spawnAlive}
	l.procs = append(l.procs, p)
	return p, nil
}

func (l *launchRecorder) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.procs)
}

func (l *launchRecorder) proc(i int) *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[i]
}

// proberFunc adapts a func to keeper.Prober.
type proberFunc func() float64

func (f proberFunc) Hashrate(context.Context) float64 { return f() }

// fakeObserver records lifecycle events.
type fakeObserver struct {
	mu         sync.Mutex
	reasons    []string
	coldStarts int
}

func (o *fakeObserver) MinerUp(bool)            {}
func (o *fakeObserver) ObserveHashrate(float64) {}

func (o *fakeObserver) ColdStart() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.coldStarts++
}

func (o *fakeObserver) Restart(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reasons = append(o.reasons, reason)
}

func (o *fakeObserver) restartReasons() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.reasons...)
}

func (o *fakeObserver) coldStartCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.coldStarts
}

// commandRecorder fakes the cold start shell.
type commandRecorder struct {
	mu       sync.Mutex
	commands []string
}

func (r *commandRecorder) run(command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	return nil
}

func (r *commandRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

func testConfig() keeper.Config {
	return keeper.Config{
		TargetHashrate:      100,
		HotRestartThreshold: time.Hour,
		MaxRunTime:          time.Hour,
		SettleTime:          time.Millisecond,
		PollInterval:        time.Millisecond,
		KillGrace:           time.Millisecond,
		ColdStartCommands:   []string{"reset-devices", "apply-clocks"},
		ColdStartDelay:      0,
	}
}

// startKeeper runs the loop in the background and returns a stop func
// that cancels it and asserts a clean context-cancelled exit.
func startKeeper(t *testing.T, k *keeper.Keeper) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- k.Run(ctx)
	}()

	return func() {
		cancel()

		select {
		case err := <-done:
			assert.True(t, errors.Is(err, context.Canceled))
		case <-time.After(5 * time.Second):
			t.Fatal("keeper did not stop after cancellation")
		}
	}
}

func TestKeeper_RestartsDeadMiner(t *testing.T) {
	launcher := &launchRecorder{spawnAlive: false}
	observer := &fakeObserver{}
	commands := &commandRecorder{}

	k := keeper.New(keeper.Params{
		Config:   testConfig(),
		Launcher: launcher.launch,
		Prober:   proberFunc(func() float64 { return 200 }),
		Runner:   commands.run,
		Observer: observer,
		Log:      zap.NewNop(),
	})

	stop := startKeeper(t, k)
	defer stop()

	// the miner is dead at the first liveness poll, so the loop must
	// restart well before the one-hour max run time
	require.Eventually(t, func() bool {
		return launcher.count() >= 2
	}, 5*time.Second, time.Millisecond)

	assert.Contains(t, observer.restartReasons(), keeper.ReasonDied)

	// a miner that died on its own is not killed again
	assert.False(t, launcher.proc(0).wasKilled())

	// every start happened within the threshold, so all were cold
	assert.GreaterOrEqual(t, observer.coldStartCount(), 2)
	assert.GreaterOrEqual(t, commands.count(), 4)
}

func TestKeeper_CyclesAfterMaxRunTime(t *testing.T) {
	config := testConfig()
	config.MaxRunTime = 30 * time.Millisecond

	launcher := &launchRecorder{spawnAlive: true}
	observer := &fakeObserver{}

	k := keeper.New(keeper.Params{
		Config:   config,
		Launcher: launcher.launch,
		Prober:   proberFunc(func() float64 { return 200 }),
		Runner:   (&commandRecorder{}).run,
		Observer: observer,
		Log:      zap.NewNop(),
	})

	stop := startKeeper(t, k)
	defer stop()

	// healthy the whole time, so only time expiry can end the cycle,
	// and a still-running miner must be killed
	require.Eventually(t, func() bool {
		return launcher.count() >= 2
	}, 5*time.Second, time.Millisecond)

	assert.Contains(t, observer.restartReasons(), keeper.ReasonExpired)
	assert.True(t, launcher.proc(0).wasKilled())
}

func TestKeeper_RestartsBelowTarget(t *testing.T) {
	launcher := &launchRecorder{spawnAlive: true}
	observer := &fakeObserver{}

	k := keeper.New(keeper.Params{
		Config:   testConfig(),
		Launcher: launcher.launch,
		Prober:   proberFunc(func() float64 { return 50 }),
		Runner:   (&commandRecorder{}).run,
		Observer: observer,
		Log:      zap.NewNop(),
	})

	stop := startKeeper(t, k)
	defer stop()

	require.Eventually(t, func() bool {
		return launcher.count() >= 2
	}, 5*time.Second, time.Millisecond)

	assert.Contains(t, observer.restartReasons(), keeper.ReasonBelowTarget)
	assert.True(t, launcher.proc(0).wasKilled())
}

func TestKeeper_RestartsOnProbeFailure(t *testing.T) {
	launcher := &launchRecorder{spawnAlive: true}
	observer := &fakeObserver{}

	k := keeper.New(keeper.Params{
		Config:   testConfig(),
		Launcher: launcher.launch,
		Prober:   proberFunc(func() float64 { return -1 }),
		Runner:   (&commandRecorder{}).run,
		Observer: observer,
		Log:      zap.NewNop(),
	})

	stop := startKeeper(t, k)
	defer stop()

	require.Eventually(t, func() bool {
		return launcher.count() >= 2
	}, 5*time.Second, time.Millisecond)

	assert.Contains(t, observer.restartReasons(), keeper.ReasonProbeFailed)
}

func TestKeeper_HotRestartSkipsColdStart(t *testing.T) {
	config := testConfig()
	// zero threshold: any elapsed time since the last start counts as
	// a long enough run, so only the very first start is cold
	config.HotRestartThreshold = 0

	launcher := &launchRecorder{spawnAlive: false}
	observer := &fakeObserver{}
	commands := &commandRecorder{}

	k := keeper.New(keeper.Params{
		Config:   config,
		Launcher: launcher.launch,
		Prober:   proberFunc(func() float64 { return 200 }),
		Runner:   commands.run,
		Observer: observer,
		Log:      zap.NewNop(),
	})

	stop := startKeeper(t, k)
	defer stop()

	require.Eventually(t, func() bool {
		return launcher.count() >= 3
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, 1, observer.coldStartCount())
	assert.Equal(t, 2, commands.count())
}

func TestKeeper_AbsorbsLaunchFailure(t *testing.T) {
	launcher := &launchRecorder{err: errors.New("exec format error")}
	observer := &fakeObserver{}

	k := keeper.New(keeper.Params{
		Config:   testConfig(),
		Launcher: launcher.launch,
		Prober:   proberFunc(func() float64 { return 200 }),
		Runner:   (&commandRecorder{}).run,
		Observer: observer,
		Log:      zap.NewNop(),
	})

	stop := startKeeper(t, k)
	defer stop()

	// launch failures must not kill the loop
	require.Eventually(t, func() bool {
		reasons := observer.restartReasons()
		failures := 0
		for _, reason := range reasons {
			if reason == keeper.ReasonLaunchFailed {
				failures++
			}
		}
		return failures >= 2
	}, 5*time.Second, time.Millisecond)
}
