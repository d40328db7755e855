// Package metrics defines prometheus metric types for the pipeline, in
// the same promauto-constructed-globals idiom the teacher uses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FlowsAdmitted counts flows created by the admission oracle.
	FlowsAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "latencynode_flows_admitted_total",
			Help: "Total number of flows admitted into the flow table.",
		},
	)

	// FlowsExpired counts flows destroyed by the timer wheel.
	FlowsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "latencynode_flows_expired_total",
			Help: "Total number of flows destroyed after their idle timer fired.",
		},
	)

	// PacketsProcessed counts packets the driver resolved to an admitted
	// flow, by protocol kind ("tcp", "quic", "plus"). Packets that fail to
	// parse or are declined admission are not counted.
	PacketsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "latencynode_packets_processed_total",
			Help: "Total number of packets resolved to a flow, by protocol kind.",
		},
		[]string{"kind"})

	// ErrorCount is the error counter array, labeled by error type. It has
	// a single placeholder type, "temp", which nothing increments.
	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "latencynode_errors_total",
			Help: "Errors by type; currently a single unused placeholder (temp).",
		},
		[]string{"type"})

	// RTTSamplesHistogram tracks emitted RTT sample values in seconds, by
	// kind and method.
	RTTSamplesHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "latencynode_rtt_seconds",
			Help:    "Distribution of emitted RTT samples, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"kind", "method"})

	// FlowTableSizeGauge tracks the number of keys currently registered
	// in the flow table (ordinarily twice the live flow count, since
	// every flow registers a forward and a reverse key).
	FlowTableSizeGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "latencynode_flow_table_keys",
			Help: "Number of keys currently registered in the flow table.",
		},
	)
)
