package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Config struct {
	// Enabled toggles the metrics endpoint
	Enabled bool `conf:"enabled"`

	// Host is the host the metrics server listens on
	Host string `conf:"host"`

	// Port is the port the metrics server listens on
	Port int `conf:"port"`
}

// Recorder exposes the keeper's lifecycle events as prometheus metrics.
// It implements keeper.Observer.
type Recorder struct {
	hashrate   prometheus.Gauge
	minerUp    prometheus.Gauge
	restarts   *prometheus.CounterVec
	coldStarts prometheus.Counter
}

func NewRecorder(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		hashrate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "minekeeper",
			Name:      "hashrate",
			Help:      "Last hashrate reported by the miner status endpoint (-1 on probe failure).",
		}),
		minerUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "minekeeper",
			Name:      "miner_up",
			Help:      "Whether a miner process is currently supervised and assumed healthy.",
		}),
		restarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minekeeper",
			Name:      "restarts_total",
			Help:      "Restart cycles by reason.",
		}, []string{"reason"}),
		coldStarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "minekeeper",
			Name:      "cold_starts_total",
			Help:      "Cold start sequences executed.",
		}),
	}
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func (r *Recorder) MinerUp(up bool) {
	if up {
		r.minerUp.Set(1)
	} else {
		r.minerUp.Set(0)
	}
}

func (r *Recorder) ObserveHashrate(hashrate float64) {
	r.hashrate.Set(hashrate)
}

func (r *Recorder) ColdStart() {
	r.coldStarts.Inc()
}

func (r *Recorder) Restart(reason string) {
	r.restarts.WithLabelValues(reason).Inc()
}
