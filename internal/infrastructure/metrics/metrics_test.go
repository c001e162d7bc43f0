package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.DebtsCreated == nil || m.HTTPRequests == nil || m.PaymentsRecorded == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.DebtsCreated.WithLabelValues("debt").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewWithRegistry_Isolated(t *testing.T) {
	first := NewWithRegistry(prometheus.NewRegistry())
	second := NewWithRegistry(prometheus.NewRegistry())

	first.PaymentsRecorded.Inc()

	if got := testutil.ToFloat64(first.PaymentsRecorded); got != 1 {
		t.Fatalf("expected 1 payment, got %v", got)
	}
	if got := testutil.ToFloat64(second.PaymentsRecorded); got != 0 {
		t.Fatalf("expected isolated registry, got %v", got)
	}
}
