// Package promhook exports cachify hook events as Prometheus metrics,
// labelled by function identity.
package promhook

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cachify"
)

// Hooks implements cachify.Hooks with counters and a compute latency histogram.
type Hooks struct {
	hits         *prometheus.CounterVec
	misses       *prometheus.CounterVec
	computeErrs  *prometheus.CounterVec
	storageErrs  *prometheus.CounterVec
	decodeFails  *prometheus.CounterVec
	computeTimes *prometheus.HistogramVec
}

var _ cachify.Hooks = (*Hooks)(nil)

// New creates the metrics and registers them on reg. reg may be nil to
// skip registration. namespace defaults to "cachify".
func New(reg prometheus.Registerer, namespace string) *Hooks {
	if namespace == "" {
		namespace = "cachify"
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}
	computeTimes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compute_seconds",
		Help:      "Wrapped function latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"fn"})
	h := &Hooks{
		hits:         counter("hits_total", "Calls answered from a live cache entry", "fn"),
		misses:       counter("misses_total", "Calls that had to run the wrapped function", "fn"),
		computeErrs:  counter("compute_errors_total", "Wrapped function calls that returned an error", "fn"),
		storageErrs:  counter("storage_errors_total", "Storage errors surfaced to the caller", "fn", "op"),
		decodeFails:  counter("decode_failures_total", "Stored results that could not be decoded", "fn"),
		computeTimes: computeTimes,
	}
	if reg != nil {
		reg.MustRegister(h.hits, h.misses, h.computeErrs, h.storageErrs, h.decodeFails, h.computeTimes)
	}
	return h
}

func (h *Hooks) CacheHit(fn string)  { h.hits.WithLabelValues(fn).Inc() }
func (h *Hooks) CacheMiss(fn string) { h.misses.WithLabelValues(fn).Inc() }

func (h *Hooks) Computed(fn string, took time.Duration, err error) {
	h.computeTimes.WithLabelValues(fn).Observe(took.Seconds())
	if err != nil {
		h.computeErrs.WithLabelValues(fn).Inc()
	}
}

func (h *Hooks) StorageError(fn, op string, _ error) {
	h.storageErrs.WithLabelValues(fn, op).Inc()
}

func (h *Hooks) DecodeFailed(fn string, _ error) {
	h.decodeFails.WithLabelValues(fn).Inc()
}
