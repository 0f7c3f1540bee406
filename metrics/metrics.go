package metrics

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meenmo/bondamm/cfmm"
)

// Variant labels.
const (
	VariantSingle = "single"
	VariantDual   = "dual"
	VariantRate   = "rate"
)

// Metrics counts oracle work on a private registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	outcomes      *prometheus.CounterVec
	rates         prometheus.Counter
	batchDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() (*Metrics, error) {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cfmm",
			Name:      "swap_outcomes_total",
			Help:      "number of evaluated swaps by pool variant and outcome",
		}, []string{"variant", "outcome"}),
		rates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cfmm",
			Name:      "anchor_rate_evaluations_total",
			Help:      "number of anchor rate evaluations",
		}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cfmm",
			Name:      "batch_duration_seconds",
			Help:      "time spent evaluating a batch of vectors",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"variant"}),
	}
	for _, c := range []prometheus.Collector{m.outcomes, m.rates, m.batchDuration} {
		if err := r.Register(c); err != nil {
			return nil, errors.Wrap(err, "register collector")
		}
	}
	return m, nil
}

// Registry exposes the registry for scraping or export.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveOutcome(variant string, f cfmm.Failure) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(variant, f.String()).Inc()
}

func (m *Metrics) ObserveRates(n int) {
	if m == nil {
		return
	}
	m.rates.Add(float64(n))
}

func (m *Metrics) ObserveBatch(variant string, d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(variant).Observe(d.Seconds())
}

// WriteTextfile writes the current values in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrap(err, "write metrics textfile")
	}
	return nil
}
