//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package miner

import (
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

func detach(cmd *exec.Cmd) {
	// new session, so the miner does not share the keeper's
	// controlling terminal or process group
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}

// killTree force-kills pid and every transitive descendant. Descendants
// are enumerated first, then the root is taken out with a process-group
// kill, which also catches anything that re-parented in between.
func killTree(pid int) error {
	for _, child := range descendants(pid) {
		// best effort, the group kill below is the backstop
		_ = child.Kill()
	}

	if pgid, err := syscall.Getpgid(pid); err == nil {
		// negative pid signals the whole process group
		return syscall.Kill(-pgid, syscall.SIGKILL)
	}

	return syscall.Kill(pid, syscall.SIGKILL)
}

// descendants returns all transitive children of pid, in breadth-first
// order. A dead or unreadable pid yields an empty slice.
func descendants(pid int) []*process.Process {
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}

	var procs []*process.Process

	queue := []*process.Process{root}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		children, err := next.Children()
		if err != nil {
			continue
		}

		procs = append(procs, children...)
		queue = append(queue, children...)
	}

	return procs
}
