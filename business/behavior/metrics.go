package behavior

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProfileCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "behavior_profiles",
		Help: "Current number of live behavior profiles.",
	})

	ProfileEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_profile_evictions_total",
			Help: "Profiles evicted from the store by reason (lru, expired).",
		},
		[]string{"reason"},
	)

	TrackingDrops = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "behavior_tracking_drops_total",
		Help: "Tracking events dropped because the queue was full.",
	})

	TrackingFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_tracking_failures_total",
			Help: "Tracking pipeline failures by stage (catalog, sink, aggregate).",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(ProfileCount, ProfileEvictions, TrackingDrops, TrackingFailures)
}
