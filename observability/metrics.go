// Copyright 2025 The vsockrpc Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package observability is the optional sidecar this runtime carries
// even though spec.md scopes metrics and logging layers out of the
// framing/dispatch core (§1): it never touches the wire format or the
// dispatch loop's correctness, only what an operator can see from
// outside it.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the counters and histograms the dispatch loop reports
// into, by route id. They carry no per-request labels beyond route id
// and outcome, keeping cardinality bounded by the number of registered
// routes.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	activeStreams   prometheus.Gauge
}

// NewMetrics registers the runtime's series on reg and returns a handle
// the dispatch loop reports into. Pass prometheus.NewRegistry() for an
// isolated registry in tests, or prometheus.DefaultRegisterer in
// production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vsockrpc_requests_total",
			Help: "Total requests dispatched, by route id and outcome.",
		}, []string{"route", "outcome"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vsockrpc_handler_duration_seconds",
			Help:    "Handler latency, by route id.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vsockrpc_active_streams",
			Help: "Streams currently being dispatched.",
		}),
	}
	reg.MustRegister(m.requestsTotal, m.handlerDuration, m.activeStreams)
	return m
}

// Outcome labels a completed dispatch for requestsTotal.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeUnknownRoute   Outcome = "unknown_route"
	OutcomeDecodingFailed Outcome = "decoding_failed"
	OutcomeHandlerFailed  Outcome = "handler_failed"
	OutcomeEncodingFailed Outcome = "encoding_failed"
	OutcomeIOFailed       Outcome = "io_failed"
)

// ObserveDispatch records one completed dispatch's route, outcome, and
// handler latency. Its signature matches rpc.Observer by structure
// (string, string, float64) rather than by import, so the rpc package
// never needs to depend on this one: wire it in with Router.WithObserver.
func (m *Metrics) ObserveDispatch(route string, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, outcome).Inc()
	m.handlerDuration.WithLabelValues(route).Observe(seconds)
}

// StreamStarted/StreamEnded bracket one accepted connection's dispatch.
func (m *Metrics) StreamStarted() {
	if m != nil {
		m.activeStreams.Inc()
	}
}

func (m *Metrics) StreamEnded() {
	if m != nil {
		m.activeStreams.Dec()
	}
}
