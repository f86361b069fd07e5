package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric lexclock records.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Deadline computations
	ComputationsTotal   CounterVec
	ComputationDuration HistogramVec

	// Holiday sets, by cache layer ("memory", "redis")
	HolidayCacheTotal CounterVec

	ErrorsTotal CounterVec
	BuildInfo   GaugeVec
}

// Buckets
var (
	DefaultHTTPDurationBuckets        = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultComputationDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.ComputationsTotal = collector.RegisterCounter("deadline_computations_total", "Deadline computations by rule kind and result", "kind", "result")
	m.ComputationDuration = collector.RegisterHistogram("deadline_computation_duration_seconds", "Deadline computation latency", DefaultComputationDurationBuckets, "kind")

	m.HolidayCacheTotal = collector.RegisterCounter("holiday_cache_requests_total", "Holiday set lookups by cache layer and result", "layer", "result")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")
	m.BuildInfo = collector.RegisterGauge("build_info", "Build information", "version", "jurisdiction")

	return m
}

// RecordHTTPRequest records one completed request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordComputation records one deadline computation. kind is a rule kind
// name; a non-nil err marks the result "error".
func RecordComputation(m *AppMetrics, kind string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ComputationsTotal.WithLabelValues(kind, result).Inc()
	m.ComputationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordHolidayCache records a holiday set lookup on layer.
func RecordHolidayCache(m *AppMetrics, layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.HolidayCacheTotal.WithLabelValues(layer, result).Inc()
}

// RecordError counts an error for component under its error code.
func RecordError(m *AppMetrics, component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
