// Package metrics owns the OpenTelemetry instruments of the veracity service
// and the optional OTLP push exporter.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/mohitexpo007/Ocean-Hazard-App"

// Metrics bundles the service instruments.
type Metrics struct {
	analyzed     metric.Int64Counter
	verified     metric.Int64Counter
	signalErrors metric.Int64Counter
	veracity     metric.Float64Histogram
	duration     metric.Float64Histogram
}

// New creates the instruments on mp. A nil provider means the global one,
// which is a no-op until Init installs an exporter.
func New(mp metric.MeterProvider) *Metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	analyzed, _ := meter.Int64Counter("veracity_reports_analyzed_total",
		metric.WithDescription("Reports scored by AnalyzeReport."))
	verified, _ := meter.Int64Counter("veracity_reports_verified_total",
		metric.WithDescription("Verification requests by outcome."))
	signalErrors, _ := meter.Int64Counter("veracity_signal_errors_total",
		metric.WithDescription("Signals zeroed because their collaborator failed."))
	veracity, _ := meter.Float64Histogram("veracity_score",
		metric.WithDescription("Distribution of fused veracity scores."),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1))
	duration, _ := meter.Float64Histogram("veracity_analyze_duration_seconds",
		metric.WithDescription("End-to-end AnalyzeReport latency."),
		metric.WithUnit("s"))

	return &Metrics{
		analyzed:     analyzed,
		verified:     verified,
		signalErrors: signalErrors,
		veracity:     veracity,
		duration:     duration,
	}
}

// ReportAnalyzed records one scored report.
func (m *Metrics) ReportAnalyzed(ctx context.Context, score float64, took time.Duration) {
	m.analyzed.Add(ctx, 1)
	m.veracity.Record(ctx, score)
	m.duration.Record(ctx, took.Seconds())
}

// SignalError records a degraded signal ("text", "image" or "cluster").
func (m *Metrics) SignalError(ctx context.Context, signal string) {
	m.signalErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("signal", signal)))
}

// ReportVerified records a verification; changed is false for repeats.
func (m *Metrics) ReportVerified(ctx context.Context, changed bool) {
	m.verified.Add(ctx, 1, metric.WithAttributes(attribute.Bool("changed", changed)))
}

// Init installs a global meter provider pushing to an OTLP gRPC endpoint.
// An empty endpoint leaves the no-op provider in place.
func Init(ctx context.Context, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", service),
	))
	if err != nil {
		return nil, err
	}

	ctxInit, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exp, err := otlpmetricgrpc.New(ctxInit,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(10*time.Second))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
