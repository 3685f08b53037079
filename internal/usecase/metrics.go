package usecase

import "github.com/prometheus/client_golang/prometheus"

var (
	checkoutOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_requests_total",
			Help: "Checkout requests by outcome code",
		},
		[]string{"outcome"},
	)

	webhookAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_attempts_total",
			Help: "Payment orchestrator calls by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(checkoutOutcomesTotal)
	prometheus.MustRegister(webhookAttemptsTotal)
}
