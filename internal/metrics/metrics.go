package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the metrics of one server instance.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	LiveClients     prometheus.Gauge
	BroadcastsTotal prometheus.Counter
	NotifiedTotal   prometheus.Counter
}

// NewCollector создает новый сборщик метрик
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livedev_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livedev_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method"}),

		ResponseSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livedev_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		}, []string{"method"}),

		LiveClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livedev_live_clients",
			Help: "Number of browsers waiting on the event stream",
		}),

		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "livedev_broadcasts_total",
			Help: "Total number of reload broadcasts",
		}),

		NotifiedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "livedev_notified_clients_total",
			Help: "Total number of clients that received a reload frame",
		}),
	}
}

// Handler возвращает HTTP handler для метрик Prometheus
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ClientsChanged implements livereload.Observer.
func (m *Collector) ClientsChanged(n int) {
	m.LiveClients.Set(float64(n))
}

// Broadcasted implements livereload.Observer.
func (m *Collector) Broadcasted(delivered int) {
	m.BroadcastsTotal.Inc()
	m.NotifiedTotal.Add(float64(delivered))
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Collector) RecordHTTPRequest(method string, status int, duration time.Duration, responseSize int64) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())

	if responseSize > 0 {
		m.ResponseSize.WithLabelValues(method).Observe(float64(responseSize))
	}
}

// HTTPMiddleware middleware для сбора HTTP метрик
func (m *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(wrapped, r)

		m.RecordHTTPRequest(r.Method, wrapped.Status(), time.Since(start), int64(wrapped.Size()))
	})
}

// ResponseWriter captures status and size while keeping streaming support.
type ResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	return size, err
}

func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.status == 0 {
		w.status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Flush lets event streams push frames through the wrapper.
func (w *ResponseWriter) Flush() {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacking not supported")
}

func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the written status code, 200 if nothing was written.
func (w *ResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int {
	return w.size
}
