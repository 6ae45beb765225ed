// Package metrics records planning activity in Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/grcstudio/transport-planner/internal/planner"
)

// Recorder registers and updates the planner's Prometheus metrics. A nil
// Recorder is safe to use and records nothing.
type Recorder struct {
	plans    *prometheus.CounterVec
	panels   prometheus.Histogram
	beds     prometheus.Histogram
	trucks   prometheus.Histogram
	duration prometheus.Histogram
}

// NewRecorder registers plan metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are
// already registered, the existing ones are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transport_plans_total",
		Help: "Total number of transport plan requests",
	}, []string{"status"})
	panels := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_plan_panels",
		Help:    "Number of panels per computed plan",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	beds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_plan_beds",
		Help:    "Number of beds per computed plan",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	trucks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_plan_trucks",
		Help:    "Number of trucks per computed plan",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "transport_plan_duration_seconds",
		Help:    "Time spent computing a transport plan",
		Buckets: prometheus.DefBuckets,
	})

	r := &Recorder{plans: plans, panels: panels, beds: beds, trucks: trucks, duration: duration}

	if err := registerCounterVec(reg, &r.plans); err != nil {
		return nil, err
	}
	for _, h := range []*prometheus.Histogram{&r.panels, &r.beds, &r.trucks, &r.duration} {
		if err := registerHistogram(reg, h); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func registerCounterVec(reg prometheus.Registerer, c **prometheus.CounterVec) error {
	if err := reg.Register(*c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		*c = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return nil
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.Histogram) error {
	if err := reg.Register(*h); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		*h = are.ExistingCollector.(prometheus.Histogram)
	}
	return nil
}

// ObservePlan records one successful planning run.
func (r *Recorder) ObservePlan(panels int, plan planner.Plan, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.plans.WithLabelValues("ok").Inc()
	r.panels.Observe(float64(panels))
	r.beds.Observe(float64(plan.TotalBeds))
	r.trucks.Observe(float64(plan.TotalTrucks))
	r.duration.Observe(elapsed.Seconds())
}

// ObserveRejected counts a plan request rejected before packing ran.
func (r *Recorder) ObserveRejected() {
	if r == nil {
		return
	}
	r.plans.WithLabelValues("rejected").Inc()
}
