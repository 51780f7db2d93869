package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jobdeck_push_subscribers",
		Help: "Live push subscriptions registered with the fan-out hub.",
	})
	deliveredCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobdeck_push_delivered_total",
		Help: "Job events delivered to subscriber channels.",
	})
	droppedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobdeck_push_dropped_total",
		Help: "Job events dropped because a subscriber channel was saturated.",
	})
	listenerUpGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jobdeck_listener_connected",
		Help: "1 while the Postgres notification connection is established. A sustained 0 is the degraded-service signal for operators.",
	})
	eventsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobdeck_listener_events_total",
		Help: "Insert notifications received from Postgres.",
	})
)
