package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal    *prometheus.CounterVec
	eventLag       *prometheus.HistogramVec
	sweepTotal     *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
	overdueTasks   prometheus.Gauge
	bottlenecks    prometheus.Gauge
	trackedRecords prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	serviceLabel := prometheus.Labels{"service": service}

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "onboarding_events_total",
			Help:      "Consumed onboarding events by type.",
		},
		[]string{"service", "type"},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between a mutation and its event being consumed.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	sweepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "overdue_sweeps_total",
			Help:      "Overdue sweeps by status.",
		},
		[]string{"service", "status"},
	)
	sweepDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "worker",
			Name:        "overdue_sweep_duration_seconds",
			Help:        "Overdue sweep duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: serviceLabel,
		},
	)
	overdueTasks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "onboarding",
			Name:        "overdue_tasks",
			Help:        "Overdue onboarding tasks at the last sweep.",
			ConstLabels: serviceLabel,
		},
	)
	bottlenecks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "onboarding",
			Name:        "bottleneck_applicants",
			Help:        "Applicants flagged as bottlenecks at the last sweep.",
			ConstLabels: serviceLabel,
		},
	)
	trackedRecords := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "onboarding",
			Name:        "records",
			Help:        "Onboarding records seen at the last sweep.",
			ConstLabels: serviceLabel,
		},
	)

	registry.MustRegister(eventsTotal, eventLag, sweepTotal, sweepDuration, overdueTasks, bottlenecks, trackedRecords)

	return &WorkerMetrics{
		registry:       registry,
		eventsTotal:    eventsTotal,
		eventLag:       eventLag,
		sweepTotal:     sweepTotal,
		sweepDuration:  sweepDuration,
		overdueTasks:   overdueTasks,
		bottlenecks:    bottlenecks,
		trackedRecords: trackedRecords,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) RecordEvent(service, eventType string, lag time.Duration) {
	if eventType == "" {
		eventType = "unknown"
	}
	m.eventsTotal.WithLabelValues(service, eventType).Inc()
	if lag >= 0 {
		m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
	}
}

func (m *WorkerMetrics) RecordSweep(service string, duration time.Duration, records, overdue, bottlenecks int, err error) {
	m.sweepDuration.Observe(duration.Seconds())
	if err != nil {
		m.sweepTotal.WithLabelValues(service, "error").Inc()
		return
	}
	m.sweepTotal.WithLabelValues(service, "success").Inc()
	m.trackedRecords.Set(float64(records))
	m.overdueTasks.Set(float64(overdue))
	m.bottlenecks.Set(float64(bottlenecks))
}
