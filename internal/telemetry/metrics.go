package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	PhaseParse     = "parse"
	PhaseRun       = "run"
	PhaseStringify = "stringify"
	PhaseProcess   = "process"
)

var (
	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "unifold",
		Name:      "phase_duration_seconds",
		Help:      "Time spent in each processor phase.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"phase"})

	phaseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unifold",
		Name:      "phase_errors_total",
		Help:      "Processor phases that ended in an error.",
	}, []string{"phase"})

	documents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unifold",
		Name:      "documents_total",
		Help:      "Documents handled by the stream pipeline, by outcome.",
	}, []string{"outcome"})
)

// ObservePhase records the duration and outcome of one phase.
func ObservePhase(phase string, start time.Time, err error) {
	phaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	if err != nil {
		phaseErrors.WithLabelValues(phase).Inc()
	}
}

// CountDocument records one streamed document as "ok" or "failed".
func CountDocument(err error) {
	if err != nil {
		documents.WithLabelValues("failed").Inc()
		return
	}
	documents.WithLabelValues("ok").Inc()
}

// Expose serves /metrics on port in the background. A port <= 0 disables it.
func Expose(port int) {
	if port <= 0 {
		return
	}
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
