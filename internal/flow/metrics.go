package flow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_flow_transitions_total",
			Help: "Screen transitions by target screen.",
		},
		[]string{"screen"},
	)
	flowIgnoredTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_flow_ignored_triggers_total",
			Help: "Triggers ignored because of a pending call or a wrong screen.",
		},
		[]string{"trigger", "reason"},
	)
	flowStaleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storyboard_flow_stale_responses_total",
			Help: "Generation results discarded because their request is no longer pending.",
		},
	)
	flowFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyboard_flow_failures_total",
			Help: "Operations that ended on the error screen.",
		},
		[]string{"operation", "error_type"},
	)
)
