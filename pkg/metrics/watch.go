package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WatchMetrics records status-poll activity for confirmation sessions.
type WatchMetrics struct {
	pollDuration *prometheus.HistogramVec
	pollSuccess  *prometheus.CounterVec
	pollFailure  *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
}

// NewWatchMetrics registers the confirmation session metrics on the provided
// registerer.
func NewWatchMetrics(reg prometheus.Registerer) *WatchMetrics {
	if reg == nil {
		return &WatchMetrics{}
	}
	pollDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_status_poll_duration_seconds",
		Help:    "Duration of payment status checks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_type"})
	pollSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_poll_success",
		Help: "Successful payment status checks.",
	}, []string{"payment_type"})
	pollFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_poll_failure",
		Help: "Failed payment status checks.",
	}, []string{"payment_type"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_session_outcome",
		Help: "Terminal outcomes of confirmation sessions.",
	}, []string{"state"})
	reg.MustRegister(pollDuration, pollSuccess, pollFailure, outcomes)
	return &WatchMetrics{
		pollDuration: pollDuration,
		pollSuccess:  pollSuccess,
		pollFailure:  pollFailure,
		outcomes:     outcomes,
	}
}

// ObservePollDuration records the duration of a status check.
func (w *WatchMetrics) ObservePollDuration(paymentType string, duration time.Duration) {
	if w == nil || w.pollDuration == nil {
		return
	}
	w.pollDuration.WithLabelValues(normalizeLabel(paymentType)).Observe(duration.Seconds())
}

// IncPollSuccess increments the success counter for the payment type.
func (w *WatchMetrics) IncPollSuccess(paymentType string) {
	if w == nil || w.pollSuccess == nil {
		return
	}
	w.pollSuccess.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

// IncPollFailure increments the failure counter for the payment type.
func (w *WatchMetrics) IncPollFailure(paymentType string) {
	if w == nil || w.pollFailure == nil {
		return
	}
	w.pollFailure.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

// IncOutcome increments the terminal outcome counter for the state.
func (w *WatchMetrics) IncOutcome(state string) {
	if w == nil || w.outcomes == nil {
		return
	}
	w.outcomes.WithLabelValues(normalizeLabel(state)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
