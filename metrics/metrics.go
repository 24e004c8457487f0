// Package metrics counts what the harness did during a run: requests sent to the backend and test
// outcomes. The counters live in a private registry and can be written out in the Prometheus text
// format at the end of a run, for a node exporter textfile collector to pick up.
package metrics

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stadtwache/admin-contract-tests/framework"
)

const namespace = "admin_contract_tests"

// Recorder owns a registry and the collectors registered in it.
type Recorder struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	testsTotal      *prometheus.CounterVec
	runSucceeded    prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests sent to the backend by method, route, and response status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Backend response latency in seconds, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		transportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Requests that failed without an HTTP response, by method and route.",
		}, []string{"method", "route"}),
		testsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tests_total",
			Help:      "Test cases by phase and outcome.",
		}, []string{"phase", "outcome"}),
		runSucceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_succeeded",
			Help:      "1 if the last run met its success policy, 0 otherwise.",
		}),
	}
	r.registry.MustRegister(r.requestsTotal, r.requestDuration, r.transportErrors, r.testsTotal, r.runSucceeded)
	return r
}

// ObserveRequest records one request that got an HTTP response.
func (r *Recorder) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	route := Route(path)
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveTransportError records one request that got no HTTP response.
func (r *Recorder) ObserveTransportError(method, path string) {
	if r == nil {
		return
	}
	r.transportErrors.WithLabelValues(method, Route(path)).Inc()
}

// ObserveResults records the outcome of every test in a finished run.
func (r *Recorder) ObserveResults(results framework.Results, ok bool) {
	if r == nil {
		return
	}
	for _, t := range results.Tests {
		r.testsTotal.WithLabelValues(t.TestID.Phase(), strings.ToLower(t.Outcome.Kind.String())).Inc()
	}
	if ok {
		r.runSucceeded.Set(1)
	} else {
		r.runSucceeded.Set(0)
	}
}

// WriteTextfile writes every metric to a file in the Prometheus text format.
func (r *Recorder) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, r.registry)
}

var staticSegments = map[string]bool{
	"admin": true, "auth": true, "api": true, "vacations": true, "teams": true, "districts": true,
	"attendance": true, "team-status": true, "approve": true, "status": true, "login": true,
	"register": true, "create-first-user": true,
}

var queryOrFragment = regexp.MustCompile(`[?#].*$`)

// Route turns a request path into a low-cardinality label by replacing identifier segments
// with "{id}", so that "/admin/teams/5f1c/status" becomes "/admin/teams/{id}/status".
func Route(path string) string {
	path = queryOrFragment.ReplaceAllString(path, "")
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s != "" && !staticSegments[s] {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
