package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes counters and latencies through prometheus.
// Network-scoped events (matches, expiries) carry a network label;
// service-level events (sweep runs, webhook attempts) do not.
type PrometheusRecorder struct {
	networkEvents  *prometheus.CounterVec
	serviceEvents  *prometheus.CounterVec
	networkLatency *prometheus.HistogramVec
	serviceLatency *prometheus.HistogramVec
}

func NewPrometheusRecorder() Recorder {
	return newPrometheusRecorder(prometheus.DefaultRegisterer)
}

func newPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	networkEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chainpay",
			Name:      "events_total",
			Help:      "reconciliation event counters by network",
		},
		[]string{"type", "network"},
	)

	serviceEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chainpay",
			Name:      "service_events_total",
			Help:      "service-level event counters",
		},
		[]string{"type"},
	)

	networkLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chainpay",
			Name:      "latency_seconds",
			Help:      "chain operation latency by network",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "network"},
	)

	serviceLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chainpay",
			Name:      "service_latency_seconds",
			Help:      "service-level operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	reg.MustRegister(networkEvents, serviceEvents, networkLatency, serviceLatency)

	return &PrometheusRecorder{
		networkEvents:  networkEvents,
		serviceEvents:  serviceEvents,
		networkLatency: networkLatency,
		serviceLatency: serviceLatency,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	if network, ok := labels["network"]; ok {
		p.networkEvents.With(prometheus.Labels{"type": name, "network": network}).Inc()
		return
	}
	p.serviceEvents.With(prometheus.Labels{"type": name}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	if network, ok := labels["network"]; ok {
		p.networkLatency.With(prometheus.Labels{"operation": name, "network": network}).Observe(d.Seconds())
		return
	}
	p.serviceLatency.With(prometheus.Labels{"operation": name}).Observe(d.Seconds())
}
