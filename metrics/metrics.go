// Package metrics implements the optional Prometheus exporter behind
// the CLI's --metrics/--metrics-json flags: cache hit/miss/size gauges,
// trace buffer gauges, and a step counter, all mirrored into a plain
// JSON-serializable snapshot so --metrics-json doesn't need a scrape
// endpoint to inspect the same numbers. The Prometheus registry is also
// exposed for hosts that want to serve a real `/metrics` endpoint
// alongside the CLI's own output.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aetherscript/aether/astcache"
	"github.com/aetherscript/aether/evaluator"
)

// Collector holds the engine-facing Prometheus gauges/counters for one
// run. It is safe to register against prometheus.NewRegistry() (not the
// global DefaultRegisterer) so repeated CLI invocations within the same
// process (batch/worker-pool mode) don't collide on duplicate
// registration.
type Collector struct {
	Registry *prometheus.Registry

	cacheSize    prometheus.Gauge
	cacheHits    prometheus.Gauge
	cacheMisses  prometheus.Gauge
	traceSize    prometheus.Gauge
	traceTotal   prometheus.Gauge
	stepsCounter prometheus.Gauge
}

// NewCollector builds and registers a fresh Collector.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		Registry: reg,
		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_ast_cache_size", Help: "Current number of entries in the AST cache.",
		}),
		cacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_ast_cache_hits_total", Help: "Total AST cache hits (lifetime, per engine).",
		}),
		cacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_ast_cache_misses_total", Help: "Total AST cache misses (lifetime, per engine).",
		}),
		traceSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_trace_buffer_size", Help: "Current number of retained trace entries.",
		}),
		traceTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_trace_emitted_total", Help: "Total trace entries ever emitted (lifetime, per engine).",
		}),
		stepsCounter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aether_statements_executed_total", Help: "Statements executed by the most recent Eval call.",
		}),
	}
	reg.MustRegister(c.cacheSize, c.cacheHits, c.cacheMisses, c.traceSize, c.traceTotal, c.stepsCounter)
	return c
}

// Snapshot is the plain, JSON-ready rendering of the same numbers the
// Prometheus gauges track, used by --metrics and --metrics-json[-pretty].
type Snapshot struct {
	CacheSize    int     `json:"cache_size"`
	CacheMaxSize int     `json:"cache_max_size"`
	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	TraceSize    int     `json:"trace_size"`
	TraceTotal   uint64  `json:"trace_total_emitted"`
	Steps        int     `json:"steps"`
}

// Observe records one engine's current cache/trace/step counters into
// the collector's gauges/counters, and returns the plain Snapshot.
func (c *Collector) Observe(cache astcache.Stats, trace evaluator.TraceStats, steps int) Snapshot {
	c.cacheSize.Set(float64(cache.Size))
	c.cacheHits.Set(float64(cache.Hits))
	c.cacheMisses.Set(float64(cache.Misses))
	c.traceSize.Set(float64(trace.Size))
	c.traceTotal.Set(float64(trace.TotalEmitted))
	c.stepsCounter.Set(float64(steps))

	return Snapshot{
		CacheSize:    cache.Size,
		CacheMaxSize: cache.MaxSize,
		CacheHits:    cache.Hits,
		CacheMisses:  cache.Misses,
		CacheHitRate: cache.HitRate(),
		TraceSize:    trace.Size,
		TraceTotal:   trace.TotalEmitted,
		Steps:        steps,
	}
}
