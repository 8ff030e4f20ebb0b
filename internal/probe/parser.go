package probe

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseFunc extracts a hashrate figure from a miner status document.
// The body has already been sanitized by the prober.
type ParseFunc func(body []byte) (float64, error)

var parsers = map[string]ParseFunc{
	"castxmr": parseCastXMR,
	"xmrstak": parseXMRStak,
}

var (
	errMissingHashrate = errors.New("status document has no hashrate field")
	errEmptyHashrate   = errors.New("status document has an empty hashrate")
)

// LookupParser returns the parser registered under the given name.
func LookupParser(name string) (ParseFunc, error) {
	parse, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("unknown status parser %q", name)
	}

	return parse, nil
}

// parseCastXMR reads the top-level total_hash_rate field of a Cast XMR
// status document. Cast XMR reports in H/s while targets are expressed
// in kH/s, so positive values are scaled down by 1000.
func parseCastXMR(body []byte) (float64, error) {
	var status struct {
		TotalHashRate *float64 `json:"total_hash_rate"`
	}

	if err := json.Unmarshal(body, &status); err != nil {
		return 0, err
	}

	if status.TotalHashRate == nil {
		return 0, errMissingHashrate
	}

	hashrate := *status.TotalHashRate
	if hashrate > 0 {
		hashrate = hashrate / 1000
	}

	return hashrate, nil
}

// parseXMRStak reads the first element of the hashrate.total sequence
// of an XMR-Stak status document. The elements may be null while the
// miner is still warming up.
func parseXMRStak(body []byte) (float64, error) {
	var status struct {
		Hashrate *struct {
			Total []*float64 `json:"total"`
		} `json:"hashrate"`
	}

	if err := json.Unmarshal(body, &status); err != nil {
		return 0, err
	}

	if status.Hashrate == nil {
		return 0, errMissingHashrate
	}

	if len(status.Hashrate.Total) == 0 || status.Hashrate.Total[0] == nil {
		return 0, errEmptyHashrate
	}

	return *status.Hashrate.Total[0], nil
}
