package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uninav/advisor-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and keeps
// lightweight atomic counters for API snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	ingestTotal     *prometheus.CounterVec
	planTotal       prometheus.Counter
	exportTotal     *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	ingestCount          uint64
	planCount            uint64
	exportDoneCount      uint64
	exportFailCount      uint64
}

// NewMetricsService builds a registry with the advisor API collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	m.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Cache lookup latency",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheLatency = cacheLatency

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Cache write latency",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheWrite = cacheWrite

	m.cacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Share of cache lookups served from cache",
	})

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache hits",
	})

	m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache misses",
	})

	m.dbQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database query latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	m.ingestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transcripts_ingested_total",
		Help: "Transcript documents ingested",
	}, []string{"format"})

	m.planTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plans_generated_total",
		Help: "Degree plans generated",
	})

	m.exportTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_total",
		Help: "Export jobs by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Live goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal,
		cacheLatency, cacheWrite, m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.dbQueryDuration,
		m.ingestTotal, m.planTotal, m.exportTotal,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordIngest counts one parsed transcript by source format.
func (m *MetricsService) RecordIngest(format models.DocumentFormat) {
	if m == nil {
		return
	}
	m.ingestTotal.WithLabelValues(string(format)).Inc()
	atomic.AddUint64(&m.ingestCount, 1)
}

// RecordPlan counts one generated degree plan.
func (m *MetricsService) RecordPlan() {
	if m == nil {
		return
	}
	m.planTotal.Inc()
	atomic.AddUint64(&m.planCount, 1)
}

// RecordExport counts one finished export job.
func (m *MetricsService) RecordExport(succeeded bool) {
	if m == nil {
		return
	}
	if succeeded {
		m.exportTotal.WithLabelValues("finished").Inc()
		atomic.AddUint64(&m.exportDoneCount, 1)
	} else {
		m.exportTotal.WithLabelValues("failed").Inc()
		atomic.AddUint64(&m.exportFailCount, 1)
	}
}

// Snapshot returns aggregated counters for the admin endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		TranscriptsIngested:      atomic.LoadUint64(&m.ingestCount),
		PlansGenerated:           atomic.LoadUint64(&m.planCount),
		ExportsCompleted:         atomic.LoadUint64(&m.exportDoneCount),
		ExportsFailed:            atomic.LoadUint64(&m.exportFailCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
