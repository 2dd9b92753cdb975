package integrals

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments — initialized once via InitMetrics().
var (
	requestCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
	errorCounter      metric.Int64Counter
	definiteGauge     metric.Float64Gauge
)

// InitMetrics registers custom OTel metric instruments for the integrals
// domain. Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("integrals")

	var err error

	requestCounter, err = meter.Int64Counter("integrals.calculations.total",
		metric.WithDescription("Total number of integral calculations attempted"),
		metric.WithUnit("{calculation}"),
	)
	if err != nil {
		return fmt.Errorf("creating request counter: %w", err)
	}

	durationHistogram, err = meter.Float64Histogram("integrals.calculation.duration",
		metric.WithDescription("Duration of integral calculations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("integrals.errors.total",
		metric.WithDescription("Total number of failed integral calculations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	definiteGauge, err = meter.Float64Gauge("integrals.last_definite_value",
		metric.WithDescription("The definite integral value of the last calculation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating definite gauge: %w", err)
	}

	return nil
}
