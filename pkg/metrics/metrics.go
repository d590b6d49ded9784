// Package metrics exposes Prometheus collectors for tool calls and conversation turns.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry     *prometheus.Registry
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	turns        *prometheus.CounterVec
	records      *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voice_agent",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by persona, tool and outcome.",
		}, []string{"persona", "tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voice_agent",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"persona", "tool"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voice_agent",
			Name:      "turns_total",
			Help:      "Conversation turns by persona and result.",
		}, []string{"persona", "result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voice_agent",
			Name:      "records_written_total",
			Help:      "Persisted records by kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.toolCalls, r.toolDuration, r.turns, r.records)
	return r
}

// ObserveTool records one tool call. outcome is "ok", "unknown_tool" or "failed".
func (r *Recorder) ObserveTool(persona, tool, outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(persona, tool, outcome).Inc()
	r.toolDuration.WithLabelValues(persona, tool).Observe(took.Seconds())
}

func (r *Recorder) ObserveTurn(persona, result string) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(persona, result).Inc()
}

func (r *Recorder) ObserveRecord(kind string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(kind).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
