package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	WebhookOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_outcomes_total",
		Help: "Payment webhook deliveries by outcome",
	}, []string{"outcome"})

	LicensesActivatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "licenses_activated_total",
		Help: "Total number of licences moved from pending to active",
	})

	LicenseMailFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "license_mail_failures_total",
		Help: "Confirmation emails that failed after activation",
	})

	ExchangeRateLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_rate_lookups_total",
		Help: "Exchange rate lookups by source",
	}, []string{"source"})

	FolioBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "folio_build_duration_seconds",
		Help:    "Time spent loading and aggregating folios for one hotel",
		Buckets: prometheus.DefBuckets,
	})
)
