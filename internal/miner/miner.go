package miner

import (
	"context"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// Miner is a handle to a running miner process.
//
// The miner is deliberately a peer OS process, not an owned child: it
// is started in its own session/console, and termination of the keeper
// does not imply termination of the miner. The handle only carries the
// pid, a wait primitive and a kill switch.
type Miner struct {
	pid         int
	termination chan struct{}
	exitErr     error

	log *zap.Logger
}

// Start launches the miner executable described by spec as a detached
// process and returns a handle to it.
func Start(spec Spec, log *zap.Logger) (*Miner, error) {
	cmd := exec.Command(spec.Path)

	if dir := filepath.Dir(spec.Path); dir != "." {
		cmd.Dir = dir
	}

	// run the miner in its own session/console, so signals delivered
	// to the keeper's terminal do not reach it
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	log = log.Named("miner").With(zap.Int("pid", cmd.Process.Pid))
	log.Info("miner process started", zap.String("path", spec.Path))

	m := &Miner{
		pid:         cmd.Process.Pid,
		termination: make(chan struct{}),
		log:         log,
	}

	go func() {
		// block until the process exits
		m.exitErr = cmd.Wait()

		m.log.Info("miner process exited", zap.Error(m.exitErr))

		// signal termination to liveness polls and waiters
		close(m.termination)
	}()

	return m, nil
}

// Pid returns the pid of the miner process.
func (m *Miner) Pid() int {
	return m.pid
}

// Alive reports whether the miner process is still running. The check
// never blocks.
func (m *Miner) Alive() bool {
	select {
	case <-m.termination:
		return false
	default:
		return true
	}
}

// Wait blocks until the miner process exits or the context is
// cancelled.
func (m *Miner) Wait(ctx context.Context) error {
	select {
	case <-m.termination:
		return m.exitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Kill terminates the miner process together with all of its
// descendants. Miners spawn helper subprocesses that survive a plain
// terminate of the top process, so the whole tree has to go.
//
// Kill is fire-and-forget: dispatch failures are logged and dropped,
// and calling it on an already-dead miner is a no-op.
func (m *Miner) Kill() {
	select {
	case <-m.termination:
		m.log.Debug("miner process already terminated")
		return
	default:
		// continue
	}

	m.log.Info("killing miner process tree")

	if err := killTree(m.pid); err != nil {
		m.log.Warn("kill dispatch failed", zap.Error(err))
	}
}
