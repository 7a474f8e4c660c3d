package vdf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	squaringsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vdfsearch",
		Name:      "squarings_total",
		Help:      "Total number of class group squarings performed by searches",
	})

	witnessesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vdfsearch",
		Name:      "witnesses_total",
		Help:      "Total number of witnesses found by searches",
	})

	activeSearches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vdfsearch",
		Name:      "active_searches",
		Help:      "Number of searches currently running",
	})

	searchesStopped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vdfsearch",
		Name:      "searches_stopped_total",
		Help:      "Searches that ended, by reason",
	}, []string{"reason"})

	squaringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vdfsearch",
		Name:      "squaring_duration_seconds",
		Help:      "Duration of a single square-and-reduce step",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16),
	})
)
