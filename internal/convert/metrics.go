package convert

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records conversion counters in a private registry, so several
// converters never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	entriesTotal *prometheus.CounterVec
	bytesTotal   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
}

// NewMetrics creates and registers the converter metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		entriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yamldap_convert_entries_total",
				Help: "Total number of entries converted",
			},
			[]string{"direction"},
		),
		bytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yamldap_convert_bytes_read_total",
				Help: "Total number of source bytes read",
			},
			[]string{"direction"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yamldap_convert_duration_seconds",
				Help:    "Duration of conversions in seconds",
				Buckets: []float64{0.1, 1, 5, 30, 120, 600},
			},
			[]string{"direction"},
		),
		lastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "yamldap_convert_last_success_timestamp_seconds",
				Help: "Unix time of the last successful conversion",
			},
			[]string{"direction"},
		),
	}
}

// Record adds the outcome of one conversion
func (m *Metrics) Record(direction string, stats Stats, err error) {
	if m == nil {
		return
	}
	m.entriesTotal.WithLabelValues(direction).Add(float64(stats.Entries))
	m.bytesTotal.WithLabelValues(direction).Add(float64(stats.Bytes))
	m.duration.WithLabelValues(direction).Observe(stats.Duration.Seconds())
	if err == nil {
		m.lastSuccess.WithLabelValues(direction).Set(float64(time.Now().Unix()))
	}
}

// WriteTextfile writes the metrics in text exposition format for the
// node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
