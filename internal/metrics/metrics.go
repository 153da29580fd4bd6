// Package metrics exposes prometheus collectors for the notification engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "goaltrack"

type Notifications struct {
	ticksTotal      *prometheus.CounterVec
	usersEvaluated  prometheus.Counter
	tickFailures    prometheus.Counter
	tickDuration    prometheus.Histogram
	emailsTotal     *prometheus.CounterVec
	rewardsThrottle prometheus.Counter
}

func NewNotifications(registerer prometheus.Registerer) *Notifications {
	factory := promauto.With(registerer)
	return &Notifications{
		ticksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "ticks_total",
				Help:      "Completed notification ticks.",
			},
			[]string{"mode"},
		),
		usersEvaluated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "users_evaluated_total",
				Help:      "Users whose goals were evaluated during a tick.",
			},
		),
		tickFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "user_failures_total",
				Help:      "Per-user failures logged and skipped during a tick.",
			},
		),
		tickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "tick_duration_seconds",
				Help:      "Wall time of a full notification tick.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		emailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "emails_total",
				Help:      "Outbound emails by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		rewardsThrottle: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "rewards_throttled_total",
				Help:      "Reward emails skipped because the daily limit was reached.",
			},
		),
	}
}

func (collector *Notifications) TickFinished(mode string, evaluated int, failed int, duration time.Duration) {
	collector.ticksTotal.WithLabelValues(mode).Inc()
	collector.usersEvaluated.Add(float64(evaluated))
	collector.tickFailures.Add(float64(failed))
	collector.tickDuration.Observe(duration.Seconds())
}

func (collector *Notifications) EmailSent(kind string) {
	collector.emailsTotal.WithLabelValues(kind, "sent").Inc()
}

func (collector *Notifications) EmailFailed(kind string) {
	collector.emailsTotal.WithLabelValues(kind, "failed").Inc()
}

func (collector *Notifications) RewardThrottled() {
	collector.rewardsThrottle.Inc()
}
