package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisions   *prometheus.CounterVec
	dayType     *prometheus.GaugeVec
	evalLatency prometheus.Histogram
	systemStop  prometheus.Gauge
	fetches     *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_decisions_total",
				Help: "Gate decisions by result, failing gate and strategy",
			},
			[]string{"result", "gate", "strategy"},
		),
		dayType: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradegate_day_type_severity",
				Help: "Current day-type severity per instrument",
			},
			[]string{"instrument"},
		),
		evalLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradegate_evaluation_duration_seconds",
				Help:    "Duration of one candidate evaluation in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		systemStop: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradegate_system_stopped",
				Help: "1 while the session kill switch is tripped",
			},
		),
		fetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_candle_fetches_total",
				Help: "Candle history fetches by instrument and interval",
			},
			[]string{"instrument", "interval"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordDecision records one gate decision.
func (r *Recorder) RecordDecision(result, gate, strategy string) {
	if gate == "" {
		gate = "none"
	}
	r.decisions.WithLabelValues(result, gate, strategy).Inc()
}

// RecordDayType records the applied day-type severity for an instrument.
func (r *Recorder) RecordDayType(instrument string, severity int) {
	r.dayType.WithLabelValues(instrument).Set(float64(severity))
}

// RecordEvalLatency records one evaluation duration in seconds.
func (r *Recorder) RecordEvalLatency(seconds float64) {
	r.evalLatency.Observe(seconds)
}

// RecordSystemStop records the kill-switch state.
func (r *Recorder) RecordSystemStop(stopped bool) {
	if stopped {
		r.systemStop.Set(1)
		return
	}
	r.systemStop.Set(0)
}

// RecordFetch records a candle history fetch.
func (r *Recorder) RecordFetch(instrument, interval string) {
	r.fetches.WithLabelValues(instrument, interval).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
