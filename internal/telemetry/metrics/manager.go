package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterNotificationsCreated *prometheus.CounterVec
	CounterNotificationsUpdated *prometheus.CounterVec
	CounterNotificationsDeleted *prometheus.CounterVec
	CounterCacheHits            *prometheus.CounterVec
	CounterCacheMisses          *prometheus.CounterVec
	CounterCacheInvalidations   prometheus.Counter
	CounterRefreshErrors        prometheus.Counter

	// gauges
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistogramRefreshDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("liftwatch", "test_notifier", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftwatch", "test_notifier", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterNotificationsCreated := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notifications_created",
		Help:      "The total number of notifications created by refresh runs",
	}, []string{"kind"})
	counterNotificationsUpdated := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notifications_updated",
		Help:      "The total number of notifications updated by refresh runs",
	}, []string{"kind"})
	counterNotificationsDeleted := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notifications_deleted",
		Help:      "The total number of stale notifications retired by refresh runs",
	}, []string{"kind"})
	counterCacheHits := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analytics_cache_hits",
		Help:      "The total number of analytics cache hits",
	}, []string{"metric"})
	counterCacheMisses := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analytics_cache_misses",
		Help:      "The total number of analytics cache misses",
	}, []string{"metric"})
	counterCacheInvalidations := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analytics_cache_invalidations",
		Help:      "The total number of analytics cache version bumps",
	})
	counterRefreshErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "refresh_errors",
		Help:      "The total number of failed per-user notification refresh runs",
	})

	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "life_signal",
		Help:        "Shows whether the service is alive",
		ConstLabels: nil,
	})

	histogramRefreshDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "refresh_duration_seconds",
		Help:      "Histogram of per-user notification refresh durations in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	return &Manager{
		CounterNotificationsCreated: counterNotificationsCreated,
		CounterNotificationsUpdated: counterNotificationsUpdated,
		CounterNotificationsDeleted: counterNotificationsDeleted,
		CounterCacheHits:            counterCacheHits,
		CounterCacheMisses:          counterCacheMisses,
		CounterCacheInvalidations:   counterCacheInvalidations,
		CounterRefreshErrors:        counterRefreshErrors,
		GaugeLifeSignal:             gaugeLifeSignal,
		HistogramRefreshDuration:    histogramRefreshDuration,
	}
}
