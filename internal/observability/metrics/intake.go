package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IntakeMetrics struct {
	registry *prometheus.Registry

	intakeTotal         *prometheus.CounterVec
	intakeDuration      *prometheus.HistogramVec
	intakeInFlight      prometheus.Gauge
	progressEventsTotal *prometheus.CounterVec
	typeConfirmedTotal  *prometheus.CounterVec
	modelListingsFailed *prometheus.CounterVec
}

// NewIntakeMetrics registers the intake pipeline families. A nil registry
// allocates a private one, which keeps the type usable on its own.
func NewIntakeMetrics(service string, registry *prometheus.Registry) *IntakeMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	intakeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docan",
			Subsystem: "intake",
			Name:      "documents_total",
			Help:      "Total upload pipeline runs by final status.",
		},
		[]string{"service", "status"},
	)
	intakeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docan",
			Subsystem: "intake",
			Name:      "document_duration_seconds",
			Help:      "Upload pipeline duration in seconds by final status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	intakeInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docan",
			Subsystem: "intake",
			Name:      "documents_in_flight",
			Help:      "Number of upload pipelines currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	progressEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docan",
			Subsystem: "progress",
			Name:      "events_total",
			Help:      "Total published progress events by step.",
		},
		[]string{"service", "step"},
	)
	typeConfirmedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docan",
			Subsystem: "taxonomy",
			Name:      "confirmations_total",
			Help:      "Total confirm-type calls by outcome.",
		},
		[]string{"service", "outcome"},
	)
	modelListingsFailed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docan",
			Subsystem: "models",
			Name:      "listing_failures_total",
			Help:      "Total failed model listing calls.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		intakeTotal,
		intakeDuration,
		intakeInFlight,
		progressEventsTotal,
		typeConfirmedTotal,
		modelListingsFailed,
	)

	return &IntakeMetrics{
		registry:            registry,
		intakeTotal:         intakeTotal,
		intakeDuration:      intakeDuration,
		intakeInFlight:      intakeInFlight,
		progressEventsTotal: progressEventsTotal,
		typeConfirmedTotal:  typeConfirmedTotal,
		modelListingsFailed: modelListingsFailed,
	}
}

func (m *IntakeMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IntakeMetrics) StartIntake() {
	m.intakeInFlight.Inc()
}

func (m *IntakeMetrics) FinishIntake(service string, duration time.Duration, err error) {
	m.intakeInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.intakeTotal.WithLabelValues(service, status).Inc()
	m.intakeDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *IntakeMetrics) RecordProgressEvent(service, step string) {
	m.progressEventsTotal.WithLabelValues(service, step).Inc()
}

func (m *IntakeMetrics) RecordTypeConfirmation(service string, appended bool) {
	outcome := "appended"
	if !appended {
		outcome = "duplicate"
	}
	m.typeConfirmedTotal.WithLabelValues(service, outcome).Inc()
}

func (m *IntakeMetrics) RecordModelListingFailure(service string) {
	m.modelListingsFailed.WithLabelValues(service).Inc()
}
