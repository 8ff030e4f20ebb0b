package keeper

import "os/exec"

// dispatchShellCommand hands the command string to the system shell,
// fire-and-forget. The child is reaped in the background so its
// process handle is released; its exit status is still ignored.
func dispatchShellCommand(command string) error {
	cmd := exec.Command("cmd", "/C", command)

	if err := cmd.Start(); err != nil {
		return err
	}

	go cmd.Wait()

	return nil
}
