package models

import "time"

// SystemMetrics is a point-in-time snapshot of service counters exposed on
// the admin surface.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	TranscriptsIngested      uint64    `json:"transcripts_ingested"`
	PlansGenerated           uint64    `json:"plans_generated"`
	ExportsCompleted         uint64    `json:"exports_completed"`
	ExportsFailed            uint64    `json:"exports_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
