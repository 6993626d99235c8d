// Package metrics registers the lottery Prometheus collectors.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scheduler step names.
const (
	StepOpen   = "open"
	StepCreate = "create"
	StepClose  = "close"
	StepDraw   = "draw"
)

var (
	schedulerTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "scheduler_ticks_total",
			Help:      "Scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)

	schedulerTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lottery",
			Name:      "scheduler_tick_duration_ms",
			Help:      "Scheduler tick duration in milliseconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	drawSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "draw_steps_total",
			Help:      "Draw lifecycle steps applied by the scheduler, by step and outcome",
		},
		[]string{"step", "outcome"},
	)

	wagerPlacements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lottery",
			Name:      "wager_placements_total",
			Help:      "Wager placement attempts by outcome",
		},
		[]string{"outcome"},
	)

	wagerPlacementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lottery",
			Name:      "wager_placement_duration_ms",
			Help:      "Wager placement duration in milliseconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"outcome"},
	)
)

// RecordTick records one scheduler tick. failed reports whether any step of
// the tick failed.
func RecordTick(failed bool, started time.Time) {
	outcome := "success"
	if failed {
		outcome = "partial_failure"
	}
	schedulerTicks.WithLabelValues(outcome).Inc()
	schedulerTickDuration.Observe(float64(time.Since(started).Milliseconds()))
}

// RecordDrawStep records one draw lifecycle step taken by the scheduler.
func RecordDrawStep(step string, err error) {
	drawSteps.WithLabelValues(normalize(step), outcomeOf(err)).Inc()
}

// RecordPlacement records one wager placement. outcome is an error code, or
// "success".
func RecordPlacement(outcome string, started time.Time) {
	oc := normalize(outcome)
	wagerPlacements.WithLabelValues(oc).Inc()
	wagerPlacementDuration.WithLabelValues(oc).Observe(float64(time.Since(started).Milliseconds()))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcomeOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalize(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "unknown"
	}
	return label
}
