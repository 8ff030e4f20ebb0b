//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package keeper

import "os/exec"

// dispatchShellCommand hands the command string to the system shell,
// fire-and-forget. The child is reaped in the background so exited
// commands do not linger as zombies; its exit status is still ignored.
func dispatchShellCommand(command string) error {
	cmd := exec.Command("sh", "-c", command)

	if err := cmd.Start(); err != nil {
		return err
	}

	go cmd.Wait()

	return nil
}
