package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vidgate/internal/core/domain"
)

// PrometheusCollector exposes the bot's operational metrics.
type PrometheusCollector struct {
	updatesTotal       *prometheus.CounterVec
	updateDuration     prometheus.Histogram
	gateOutcomesTotal  *prometheus.CounterVec
	tokenGrantsTotal   prometheus.Counter
	premiumGrantsTotal prometheus.Counter
	premiumRevokes     prometheus.Counter
	shortlinkFallbacks prometheus.Counter
	videosStoredTotal  prometheus.Counter
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		updatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vidgate_updates_total",
			Help: "Inbound Telegram updates by kind",
		}, []string{"kind"}),

		updateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidgate_update_duration_seconds",
			Help:    "Time spent handling one update",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),

		gateOutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vidgate_gate_outcomes_total",
			Help: "Access gate passes by terminal outcome",
		}, []string{"outcome"}),

		tokenGrantsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidgate_token_grants_total",
			Help: "Ad tokens granted",
		}),

		premiumGrantsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidgate_premium_grants_total",
			Help: "Premium grants and extensions",
		}),

		premiumRevokes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidgate_premium_revocations_total",
			Help: "Premium revocations",
		}),

		shortlinkFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidgate_shortlink_fallbacks_total",
			Help: "Short-link provider failures degraded to direct links",
		}),

		videosStoredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vidgate_videos_stored_total",
			Help: "Videos added to the catalog",
		}),
	}
}

func (c *PrometheusCollector) IncUpdate(kind string) {
	c.updatesTotal.WithLabelValues(kind).Inc()
}

func (c *PrometheusCollector) ObserveUpdateDuration(d time.Duration) {
	c.updateDuration.Observe(d.Seconds())
}

func (c *PrometheusCollector) IncGateOutcome(outcome domain.GateOutcome) {
	c.gateOutcomesTotal.WithLabelValues(outcome.String()).Inc()
}

func (c *PrometheusCollector) IncTokenGrant() {
	c.tokenGrantsTotal.Inc()
}

func (c *PrometheusCollector) IncPremiumGrant() {
	c.premiumGrantsTotal.Inc()
}

func (c *PrometheusCollector) IncPremiumRevoke() {
	c.premiumRevokes.Inc()
}

func (c *PrometheusCollector) IncShortlinkFallback() {
	c.shortlinkFallbacks.Inc()
}

func (c *PrometheusCollector) IncVideoStored() {
	c.videosStoredTotal.Inc()
}
