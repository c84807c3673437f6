// Package metrics exposes Prometheus collectors for treasury operations.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ibimina"

// Metrics groups the collectors registered by New.
type Metrics struct {
	submissions   *prometheus.CounterVec
	adjudications *prometheus.CounterVec
	dateCommits   prometheus.Counter
	rpcRequests   *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_submissions_total",
			Help:      "Collection submissions by gateway and resulting status.",
		}, []string{"gateway", "status"}),
		adjudications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_adjudications_total",
			Help:      "Admin adjudications by resulting status.",
		}, []string{"status"}),
		dateCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_date_commits_total",
			Help:      "Members that locked in their payout dates.",
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure, command and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "RPC request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	reg.MustRegister(m.submissions, m.adjudications, m.dateCommits, m.rpcRequests, m.rpcDuration)
	return m
}

// ObserveSubmission counts a new collection submission.
func (m *Metrics) ObserveSubmission(gateway, status string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(gateway, status).Inc()
}

// ObserveAdjudication counts an approve or reject outcome.
func (m *Metrics) ObserveAdjudication(status string) {
	if m == nil {
		return
	}
	m.adjudications.WithLabelValues(status).Inc()
}

// ObserveDateCommit counts a payout-date lock.
func (m *Metrics) ObserveDateCommit() {
	if m == nil {
		return
	}
	m.dateCommits.Inc()
}

// ObserveRPC records one RPC call.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(seconds)
}
