package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProcessedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "recap_sync_processed_total", Help: "Total processed outbox events"},
	)
	FailedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "recap_sync_failed_total", Help: "Total failed outbox events"},
	)
	DLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "recap_sync_dlq_total", Help: "Total events inserted into DLQ"},
	)
	MigratedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "recap_migration_events_total", Help: "Legacy events processed by migration, by outcome"},
		[]string{"outcome"}, // migrated | already_migrated | failed
	)
	SkippedBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "recap_blocks_skipped_total", Help: "Content blocks left out of rendered output, by reason"},
		[]string{"reason"}, // malformed | unknown_type | empty
	)
	RenderCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "recap_render_cache_total", Help: "Render cache lookups, by result"},
		[]string{"result"}, // hit | miss | error
	)
)

func Register() {
	prometheus.MustRegister(ProcessedEvents, FailedEvents, DLQEvents, MigratedEvents, SkippedBlocks, RenderCache)
}
