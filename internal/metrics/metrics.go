package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Commerce metrics

	CartsPriced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "carts_priced_total",
		Help:      "Total cart pricing requests, by region.",
	}, []string{"region"})

	OrdersCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Total orders created, by region and source.",
	}, []string{"region", "source"})

	OrderValue = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "order_value",
		Help:      "Order totals in display currency units.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"currency"})

	// Auth metrics

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "registrations_total",
		Help:      "Total successful registrations.",
	})

	// Subscription dispatcher metrics

	SubscriptionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "subscription_runs_total",
		Help:      "Total subscription dispatch runs, by outcome.",
	}, []string{"outcome"})

	SubscriptionCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "subscription_cycle_duration_seconds",
		Help:      "Time taken for one subscription dispatcher cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		CartsPriced,
		OrdersCreated,
		OrderValue,
		LoginsTotal,
		RegistrationsTotal,
		SubscriptionRunsTotal,
		SubscriptionCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
