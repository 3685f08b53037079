package images

import "github.com/prometheus/client_golang/prometheus"

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_resolutions_total",
			Help: "Image resolutions by the source that served them",
		},
		[]string{"source"},
	)

	providerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_provider_failures_total",
			Help: "Failed provider calls, including calls rejected by an open circuit",
		},
		[]string{"provider"},
	)

	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_cache_errors_total",
			Help: "Image cache backend errors",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(resolutionsTotal)
	prometheus.MustRegister(providerFailuresTotal)
	prometheus.MustRegister(cacheErrors)
}
