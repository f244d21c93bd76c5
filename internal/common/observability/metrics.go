package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records OpenTelemetry instruments that are exported through
// the default Prometheus registry alongside the promauto collectors.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	reportDuration otelmetric.Float64Histogram
	reportSize     otelmetric.Int64Histogram
}

// New registers the exporter and instruments. On exporter failure it returns a
// recorder whose methods are no-ops.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	reportDuration, _ := meter.Float64Histogram(
		"report.generation.duration",
		otelmetric.WithDescription("PDF report generation duration"),
		otelmetric.WithUnit("ms"),
	)

	reportSize, _ := meter.Int64Histogram(
		"report.size",
		otelmetric.WithDescription("Generated PDF size"),
		otelmetric.WithUnit("By"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		jobCounter:     jobCounter,
		jobDuration:    jobDuration,
		reportDuration: reportDuration,
		reportSize:     reportSize,
	}, nil
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordReport records one generated PDF.
func (o *Observability) RecordReport(ctx context.Context, visaType string, duration time.Duration, size int) {
	if o == nil || o.reportDuration == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("visa_type", visaType))
	o.reportDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if o.reportSize != nil {
		o.reportSize.Record(ctx, int64(size), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
