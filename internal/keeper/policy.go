package keeper

import "time"

// NeedsColdStart reports whether the next start requires the full
// environment reset sequence. The first start of a session is always
// cold, as is any restart happening sooner than threshold after the
// previous start. A restart exactly at the threshold is hot.
func NeedsColdStart(lastStart, now time.Time, threshold time.Duration) bool {
	if lastStart.IsZero() {
		return true
	}

	return now.Sub(lastStart) < threshold
}

// RunTimeExpired reports whether the miner has been running for at
// least maxRunTime since lastStart.
func RunTimeExpired(lastStart, now time.Time, maxRunTime time.Duration) bool {
	return now.Sub(lastStart) >= maxRunTime
}

// Health classifies a probed hashrate against the target floor.
type Health int

const (
	// HealthOK means the hashrate meets the target.
	HealthOK Health = iota

	// HealthProbeFailed means the probe could not produce a usable
	// hashrate (the <= 0 failure sentinel).
	HealthProbeFailed

	// HealthBelowTarget means the miner is alive but underperforming.
	HealthBelowTarget
)

// Classify maps a probed hashrate to a health verdict.
func Classify(hashrate, target float64) Health {
	switch {
	case hashrate <= 0:
		return HealthProbeFailed
	case hashrate < target:
		return HealthBelowTarget
	default:
		return HealthOK
	}
}
