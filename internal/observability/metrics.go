// Package observability exposes prometheus metrics for the sync engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	pendingMutationsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutsync",
		Subsystem: "outbox",
		Name:      "pending_mutations",
		Help:      "Number of local mutations awaiting server acknowledgement.",
	})
	flushRoundsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutsync",
		Subsystem: "engine",
		Name:      "flush_rounds_total",
		Help:      "Outbox flush rounds attempted.",
	})
	flushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workoutsync",
		Subsystem: "engine",
		Name:      "flush_duration_seconds",
		Help:      "Wall time spent per flush invocation.",
		Buckets:   prometheus.DefBuckets,
	})
	pushFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutsync",
		Subsystem: "engine",
		Name:      "push_failures_total",
		Help:      "Push attempts that failed at the transport level.",
	})
	protocolRejectCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutsync",
		Subsystem: "engine",
		Name:      "protocol_rejects_total",
		Help:      "Mutations the server rejected as semantically invalid.",
	}, []string{"action"})
	eventsAppliedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutsync",
		Subsystem: "reconcile",
		Name:      "events_applied_total",
		Help:      "Remote events applied to the entity store.",
	}, []string{"action"})
	eventsSkippedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutsync",
		Subsystem: "reconcile",
		Name:      "events_skipped_total",
		Help:      "Remote events skipped because of unknown actions or apply failures.",
	}, []string{"action"})
	watermarkGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutsync",
		Subsystem: "engine",
		Name:      "pull_watermark_timestamp_seconds",
		Help:      "Unix timestamp of the last successfully applied pull.",
	})
)

func init() {
	prometheus.MustRegister(
		pendingMutationsGauge,
		flushRoundsCounter,
		flushDuration,
		pushFailureCounter,
		protocolRejectCounter,
		eventsAppliedCounter,
		eventsSkippedCounter,
		watermarkGauge,
	)
}

// RecordPendingMutations updates the pending-outbox gauge.
func RecordPendingMutations(count int) {
	pendingMutationsGauge.Set(float64(count))
}

// RecordFlushRound counts one drain round.
func RecordFlushRound() {
	flushRoundsCounter.Inc()
}

// ObserveFlushDuration records the wall time of one flush invocation.
func ObserveFlushDuration(seconds float64) {
	flushDuration.Observe(seconds)
}

// RecordPushFailure counts a transport-level push failure.
func RecordPushFailure() {
	pushFailureCounter.Inc()
}

// RecordProtocolReject counts a server-side semantic rejection.
func RecordProtocolReject(action string) {
	protocolRejectCounter.WithLabelValues(action).Inc()
}

// RecordEventApplied counts an applied remote event.
func RecordEventApplied(action string) {
	eventsAppliedCounter.WithLabelValues(action).Inc()
}

// RecordEventSkipped counts a skipped remote event.
func RecordEventSkipped(action string) {
	eventsSkippedCounter.WithLabelValues(action).Inc()
}

// RecordWatermark updates the watermark gauge from epoch millis.
func RecordWatermark(millis int64) {
	if millis <= 0 {
		return
	}
	watermarkGauge.Set(float64(millis) / 1000)
}
