// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "smartcalendar"

const (
	LabelKind    = "kind"
	LabelStatus  = "status"
	LabelOutcome = "outcome"
)

var ActivitiesSaved = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "activities_saved_total",
		Help:      "Activities created or updated.",
	},
	[]string{LabelKind},
)

var OverlapWarnings = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "overlap_warnings_total",
		Help:      "Overlap warnings returned to clients when saving activities.",
	},
)

var EmailsSent = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "emails_sent_total",
		Help:      "Transactional emails handed to the provider.",
	},
	[]string{LabelKind, LabelStatus},
)

var LoginAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	},
	[]string{LabelOutcome},
)

var TokensPruned = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "tokens_pruned_total",
		Help:      "Expired refresh tokens, OTPs and reset tokens deleted.",
	},
)
