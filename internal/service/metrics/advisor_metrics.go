package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AdvisorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinsage",
			Subsystem: "advisor",
			Name:      "latency_seconds",
			Help:      "Latency of advisor endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AdvisorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinsage",
			Subsystem: "advisor",
			Name:      "errors_total",
			Help:      "Errors by advisor endpoint",
		},
		[]string{"endpoint"},
	)

	CollaboratorOutages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinsage",
			Subsystem: "advisor",
			Name:      "collaborator_outages_total",
			Help:      "Upstream service outages by collaborator",
		},
		[]string{"collaborator"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AdvisorLatency, AdvisorErrors, CollaboratorOutages)
	})
}
