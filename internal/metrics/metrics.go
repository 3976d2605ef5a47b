// Package metrics exposes Prometheus instruments for the sampling loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sweeney/dock-sensor/internal/logic"
)

var (
	// Sampling
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dock",
		Subsystem: "sampler",
		Name:      "cycles_total",
		Help:      "Total classification cycles run",
	})

	ReadErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dock",
		Subsystem: "sampler",
		Name:      "read_errors_total",
		Help:      "Total ADC reads that failed and skipped a cycle",
	})

	LineRaw = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "dock",
		Subsystem: "sampler",
		Name:      "line_raw",
		Help:      "Last raw 12-bit reading per sense line",
	}, []string{"line"})

	// Classifier
	Flag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "dock",
		Subsystem: "classifier",
		Name:      "flag",
		Help:      "Latched classifier flag (0=false, 1=true)",
	}, []string{"flag"})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dock",
		Subsystem: "classifier",
		Name:      "events_total",
		Help:      "Total flag transitions by event type",
	}, []string{"event"})

	// Outputs
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dock",
		Subsystem: "actions",
		Name:      "runs_total",
		Help:      "Total output sequences by action and result",
	}, []string{"action", "result"})

	// Sinks
	PublishErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dock",
		Subsystem: "publisher",
		Name:      "errors_total",
		Help:      "Total failed publishes by sink",
	}, []string{"sink"})
)

var lineNames = [4]string{"a3", "a2", "a1", "a0"}

// ObserveCycle records one completed cycle.
func ObserveCycle(s logic.Sample, f logic.Flags, events []logic.Event) {
	CyclesTotal.Inc()
	for i, raw := range s.Raw() {
		LineRaw.WithLabelValues(lineNames[i]).Set(float64(raw))
	}
	Flag.WithLabelValues("wifi").Set(b2f(f.WiFi))
	Flag.WithLabelValues("shutdown").Set(b2f(f.Shutdown))
	Flag.WithLabelValues("searching").Set(b2f(f.Searching))
	Flag.WithLabelValues("charging").Set(b2f(f.Charging))
	for _, e := range events {
		EventsTotal.WithLabelValues(string(e.Type)).Inc()
	}
}

// ObserveAction records the outcome of an output sequence.
func ObserveAction(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ActionsTotal.WithLabelValues(action, result).Inc()
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
