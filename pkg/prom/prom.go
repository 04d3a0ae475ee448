package prom

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	xhttp "github.com/rumahkitanet/wa-notify/pkg/http"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemDispatch = "dispatch"
	SystemGateway  = "gateway"
)

const (
	MetricDispatchResults        = "results_total"
	MetricGatewayRequestDuration = "request_duration_seconds"
	MetricGatewayRequestsTotal   = "requests_total"
)

// Outcome label values for dispatch results.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

var (
	mu        sync.Mutex
	enabled   bool
	namespace = "none"

	dispatchResults *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	gatewayRequests *prometheus.CounterVec
)

// Create registers the service metrics. Call once at startup; collection is a
// no-op until then so tests run without a registry.
func Create(nameSpace string) error {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		return nil
	}
	namespace = nameSpace

	dispatchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: SystemDispatch,
		Name:      MetricDispatchResults,
	}, []string{"outcome"})

	gatewayDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: SystemGateway,
		Name:      MetricGatewayRequestDuration,
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	gatewayRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: SystemGateway,
		Name:      MetricGatewayRequestsTotal,
	}, []string{"op", "result"})

	for _, c := range []prometheus.Collector{dispatchResults, gatewayDuration, gatewayRequests} {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}
	enabled = true
	return nil
}

func CountDispatchResult(outcome string, n int) {
	if !enabled || n <= 0 {
		return
	}
	dispatchResults.WithLabelValues(outcome).Add(float64(n))
}

func ObserveGatewayRequest(op string, d time.Duration, ok bool) {
	if !enabled {
		return
	}
	gatewayDuration.WithLabelValues(op).Observe(d.Seconds())
	result := "ok"
	if !ok {
		result = "error"
	}
	gatewayRequests.WithLabelValues(op, result).Inc()
}

// MetricsHandler exposes the prometheus registry on the fasthttp server.
func MetricsHandler() xhttp.RequestHandler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(ctx *xhttp.RequestCtx) {
		h(ctx)
	}
}
