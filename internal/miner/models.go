package miner

// Spec describes the miner executable to supervise.
type Spec struct {
	// Path is the filesystem path of the miner executable. The miner
	// is started with no arguments and with its working directory set
	// to the directory containing the executable, as miners resolve
	// config files and kernels relative to their own directory.
	Path string `conf:"path"`
}
