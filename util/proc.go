package util

import "github.com/shirou/gopsutil/v3/process"

// IsProcessAlive reports whether a process with the given pid exists.
func IsProcessAlive(pid int) bool {
	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return false
	}

	return alive
}
