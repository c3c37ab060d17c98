package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *WatchMetrics
	m.ObservePollDuration("order", time.Second)
	m.IncPollSuccess("order")
	m.IncPollFailure("order")
	m.IncOutcome("success")

	empty := NewWatchMetrics(nil)
	empty.IncOutcome("expired")
}

func TestRegisteredMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWatchMetrics(reg)

	m.ObservePollDuration("booking", 120*time.Millisecond)
	m.IncPollSuccess("booking")
	m.IncPollFailure("")
	m.IncOutcome("partial_refund")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 4 {
		t.Fatalf("expected 4 metric families, got %d", len(families))
	}
}
