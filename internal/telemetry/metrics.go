package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/roomzy"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// HTTP client metrics
	RequestsTotal      metric.Int64Counter
	RequestErrorsTotal metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	UnauthorizedTotal  metric.Int64Counter

	// Refresh protocol metrics
	RefreshTotal         metric.Int64Counter
	RefreshFailuresTotal metric.Int64Counter
	RefreshSharedTotal   metric.Int64Counter

	// Session metrics
	SessionActionsTotal metric.Int64Counter
	SessionResetsTotal  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// HTTP client metrics
	m.RequestsTotal, _ = meter.Int64Counter(
		"roomzy.http.requests.total",
		metric.WithDescription("Total number of HTTP requests sent to the API"),
		metric.WithUnit("{request}"),
	)

	m.RequestErrorsTotal, _ = meter.Int64Counter(
		"roomzy.http.requests.errors.total",
		metric.WithDescription("Total number of requests that failed before a response was received"),
		metric.WithUnit("{error}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"roomzy.http.requests.duration",
		metric.WithDescription("Duration of HTTP requests including transport retries"),
		metric.WithUnit("ms"),
	)

	m.UnauthorizedTotal, _ = meter.Int64Counter(
		"roomzy.http.unauthorized.total",
		metric.WithDescription("Total number of 401 responses"),
		metric.WithUnit("{response}"),
	)

	// Refresh protocol metrics
	m.RefreshTotal, _ = meter.Int64Counter(
		"roomzy.auth.refresh.total",
		metric.WithDescription("Total number of refresh token exchanges"),
		metric.WithUnit("{refresh}"),
	)

	m.RefreshFailuresTotal, _ = meter.Int64Counter(
		"roomzy.auth.refresh.failures.total",
		metric.WithDescription("Total number of failed refresh token exchanges"),
		metric.WithUnit("{refresh}"),
	)

	m.RefreshSharedTotal, _ = meter.Int64Counter(
		"roomzy.auth.refresh.shared.total",
		metric.WithDescription("Total number of requests that waited on another request's refresh"),
		metric.WithUnit("{request}"),
	)

	// Session metrics
	m.SessionActionsTotal, _ = meter.Int64Counter(
		"roomzy.session.actions.total",
		metric.WithDescription("Total number of session actions run"),
		metric.WithUnit("{action}"),
	)

	m.SessionResetsTotal, _ = meter.Int64Counter(
		"roomzy.session.resets.total",
		metric.WithDescription("Total number of session resets to the initial state"),
		metric.WithUnit("{reset}"),
	)

	return m
}
