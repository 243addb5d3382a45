package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend API and session store metrics, registered lazily on first use.
var (
	apiRequestsTotal       *prometheus.CounterVec
	apiRequestDuration     *prometheus.HistogramVec
	viewActionsTotal       *prometheus.CounterVec
	viewFetchesTotal       *prometheus.CounterVec
	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec

	apiMetricsOnce sync.Once
)

func initializeAPIMetrics() {
	apiMetricsOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ward_api_requests_total",
				Help: "Total number of requests sent to the hospital API",
			},
			[]string{"method", "endpoint", "status_code"},
		)

		apiRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ward_api_request_duration_seconds",
				Help:    "Time spent waiting for the hospital API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		)

		viewFetchesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ward_view_fetches_total",
				Help: "Total number of view loads by outcome",
			},
			[]string{"view", "result"}, // "ready", "empty", "failed"
		)

		viewActionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ward_view_actions_total",
				Help: "Total number of user actions dispatched from views",
			},
			[]string{"view", "action", "result"}, // "success", "failed", "rejected"
		)

		storeOperationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ward_session_store_operations_total",
				Help: "Total number of session store operations",
			},
			[]string{"operation", "status"},
		)

		storeOperationDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ward_session_store_operation_duration_seconds",
				Help:    "Duration of session store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		GetInstance().registry.MustRegister(
			apiRequestsTotal,
			apiRequestDuration,
			viewFetchesTotal,
			viewActionsTotal,
			storeOperationsTotal,
			storeOperationDuration,
		)
	})
}

// RecordAPIRequest records one backend call. statusCode 0 means the request never got a response.
func RecordAPIRequest(method, endpoint string, startTime time.Time, statusCode int) {
	if !BusinessEnabled() {
		return
	}
	initializeAPIMetrics()

	apiRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	apiRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(startTime).Seconds())
}

// RecordViewFetch records the outcome of a view load
func RecordViewFetch(view, result string) {
	if !BusinessEnabled() {
		return
	}
	initializeAPIMetrics()

	viewFetchesTotal.WithLabelValues(view, result).Inc()
}

// RecordViewAction records the outcome of a view action
func RecordViewAction(view, action, result string) {
	if !BusinessEnabled() {
		return
	}
	initializeAPIMetrics()

	viewActionsTotal.WithLabelValues(view, action, result).Inc()
}

// RecordStoreOperation records a session store call
func RecordStoreOperation(operation string, startTime time.Time, err error) {
	if !BusinessEnabled() {
		return
	}
	initializeAPIMetrics()

	status := "success"
	if err != nil {
		status = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, status).Inc()
	storeOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
}
