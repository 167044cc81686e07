// Package metrics provides Prometheus metrics for Ikigai.
// Counters for progress events and storage health, served on /metrics
// when telemetry is enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Gamification ───────────────────────────────────────────────────────────

// ModulesCompleted tracks first-time module completions by island.
var ModulesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "modules_completed_total",
	Help:      "First-time module completions.",
}, []string{"island"})

// BadgesAwarded tracks badges granted.
var BadgesAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "badges_awarded_total",
	Help:      "Badges awarded.",
})

// ChallengesCompleted tracks first-time challenge completions.
var ChallengesCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "challenges_completed_total",
	Help:      "First-time challenge completions.",
})

// PointsAwarded tracks points granted by source.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "points_awarded_total",
	Help:      "Points awarded, by source.",
}, []string{"source"})

// ─── Questionnaire ──────────────────────────────────────────────────────────

// SessionsOpened tracks questionnaire sessions, by mode.
var SessionsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "quiz_sessions_opened_total",
	Help:      "Questionnaire sessions opened.",
}, []string{"mode"})

// AdvanceRejected tracks advance attempts blocked by an unanswered question.
var AdvanceRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "quiz_advance_rejected_total",
	Help:      "Advance attempts rejected by the required-answer gate.",
})

// ─── Storage ────────────────────────────────────────────────────────────────

// StorageFailures tracks swallowed persistence failures by operation.
var StorageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ikigai",
	Name:      "storage_failures_total",
	Help:      "Progress storage failures absorbed by the store.",
}, []string{"op"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "ikigai",
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})
