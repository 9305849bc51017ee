package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundwave_connections_total",
		Help: "Total TCP connections accepted.",
	})
	metricConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "groundwave_connections_active",
		Help: "Connections currently being served.",
	})
	metricAcceptErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundwave_accept_errors_total",
		Help: "Accept calls that returned an error.",
	})
	metricRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundwave_requests_total",
		Help: "Requests served, by response status class.",
	}, []string{"class"})
	metricConnectionErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundwave_connection_errors_total",
		Help: "Connections terminated by a protocol or handler error.",
	})
	metricBytesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groundwave_response_bytes_total",
		Help: "Response bytes written, headers included.",
	})
)

func statusClass(code int) string {
	switch code / 100 {
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	default:
		return "other"
	}
}

// serveMetrics exposes the Prometheus registry on its own listener,
// kept apart from the main accept loop so scrapes never compete with
// request traffic.
func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go srv.ListenAndServe()
	return srv
}
