package miner

import (
	"os/exec"
	"strconv"
	"syscall"
)

const createNewConsole = 0x00000010

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNewConsole,
	}
}

// killTree dispatches taskkill against the whole process tree. The
// command is not awaited; plain Process.Kill would leave the miner's
// helper subprocesses running.
func killTree(pid int) error {
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Start()
}
