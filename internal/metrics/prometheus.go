package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TriageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_requests_total",
			Help: "Total triage requests processed",
		},
		[]string{"category", "severity"},
	)

	TriageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_duration_seconds",
			Help:    "End-to-end triage pipeline duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	TriageFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_fallback_total",
			Help: "Triage runs that ended in the degraded fallback record",
		},
	)

	ClassifierDowngrades = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_classifier_downgrades_total",
			Help: "Delegated classifications that fell back to heuristics",
		},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_confidence_score",
			Help:    "Fused confidence of triage results",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_notifications_total",
			Help: "Outbound urgent notifications by outcome",
		},
		[]string{"outcome"},
	)

	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_broadcasts_total",
			Help: "Broadcast events emitted by kind",
		},
		[]string{"kind"},
	)

	ObserversConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_observers_connected",
			Help: "Currently connected broadcast observers",
		},
	)

	WorkingSetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_working_set_size",
			Help: "Records in the recent-activity working set",
		},
	)
)

func init() {
	prometheus.MustRegister(TriageTotal)
	prometheus.MustRegister(TriageDuration)
	prometheus.MustRegister(TriageFallbacks)
	prometheus.MustRegister(ClassifierDowngrades)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(ObserversConnected)
	prometheus.MustRegister(WorkingSetSize)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
