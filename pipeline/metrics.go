package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pmeval"

// Stats instruments a run. Its registry can be written out as a textfile
// for the node exporter once the run is over.
type Stats struct {
	Registry       *prometheus.Registry
	Files          *prometheus.CounterVec
	MinerDuration  *prometheus.HistogramVec
	MetricDuration *prometheus.HistogramVec
	MetricFailures *prometheus.CounterVec
}

func NewStats() *Stats {
	s := &Stats{
		Registry: prometheus.NewRegistry(),
		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Event logs handled, by outcome.",
		}, []string{"status"}),
		MinerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "miner_duration_seconds",
			Help:      "Wall time of each discovery algorithm.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		MetricDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "metric_duration_seconds",
			Help:      "Wall time of each conformance metric.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"metric"}),
		MetricFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metric_failures_total",
			Help:      "Metrics that produced no value.",
		}, []string{"algorithm", "metric"}),
	}
	s.Registry.MustRegister(s.Files, s.MinerDuration, s.MetricDuration, s.MetricFailures)
	return s
}

// WriteTextfile stores the current values in the Prometheus text format.
func (s *Stats) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.Registry)
}

func (s *Stats) file(status string) {
	if s != nil {
		s.Files.WithLabelValues(status).Inc()
	}
}

func (s *Stats) miner(name string, d time.Duration) {
	if s != nil {
		s.MinerDuration.WithLabelValues(name).Observe(d.Seconds())
	}
}

func (s *Stats) metric(algorithm, name string, d time.Duration, failed bool) {
	if s == nil {
		return
	}
	s.MetricDuration.WithLabelValues(name).Observe(d.Seconds())
	if failed {
		s.MetricFailures.WithLabelValues(algorithm, name).Inc()
	}
}
