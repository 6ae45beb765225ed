package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/grcstudio/transport-planner/internal/planner"
)

func TestNewRecorderRegistersCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}

	rec.ObservePlan(10, planner.Plan{TotalBeds: 4, TotalTrucks: 2}, 3*time.Millisecond)
	rec.ObserveRejected()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	if len(families) != 5 {
		t.Fatalf("expected 5 metric families, got %d", len(families))
	}
}

func TestNewRecorderReusesExistingCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("first NewRecorder returned error: %v", err)
	}
	rec, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("second NewRecorder returned error: %v", err)
	}
	rec.ObservePlan(1, planner.Plan{TotalBeds: 1, TotalTrucks: 1}, time.Millisecond)
}

func TestNilRecorderIsNoop(t *testing.T) {
	t.Parallel()

	var rec *Recorder
	rec.ObservePlan(1, planner.Plan{}, time.Millisecond)
	rec.ObserveRejected()
}
