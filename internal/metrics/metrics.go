package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "galconsole_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "galconsole_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	commandRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "galconsole_command_runs_total",
			Help: "Total number of external command invocations",
		},
		[]string{"command", "status"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "galconsole_command_duration_seconds",
			Help:    "External command duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"command"},
	)

	mailboxPutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "galconsole_mailbox_puts_total",
			Help: "Total number of commands posted to the mailbox",
		},
		[]string{"kind"},
	)

	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "galconsole_websocket_clients",
			Help: "Connected websocket push clients",
		},
	)
)

var registry = newRegistry()

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		commandRunsTotal,
		commandDuration,
		mailboxPutsTotal,
		websocketClients,
	)
	return r
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordCommand(command string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	commandRunsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func RecordMailboxPut(kind string) {
	mailboxPutsTotal.WithLabelValues(kind).Inc()
}

func WebsocketConnected() {
	websocketClients.Inc()
}

func WebsocketDisconnected() {
	websocketClients.Dec()
}
