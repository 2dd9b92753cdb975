package integrals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"integrals-api/internal/handlers"
	"integrals-api/internal/observability"
	"integrals-api/internal/symbol"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the integrals domain's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("integrals")

// Calculate handles POST /calculate. It parses the submitted expression,
// computes a symbolic antiderivative, samples plot series over the fixed
// plot window and, when both limits are usable, evaluates the definite
// integral and the shaded-area series.
//
// The endpoint always answers 200 with a JSON body; computational failures
// are reported through the success flag rather than an HTTP status, so the
// front end has a single decode path.
func Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "integrals.calculate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()

	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(ctx, w, span, logger, "decode", "invalid request body", err)
		return
	}

	variable := req.Variable
	if variable == "" {
		variable = "x"
	}

	span.SetAttributes(
		attribute.String("integrals.function", req.Function),
		attribute.String("integrals.variable", variable),
	)

	// --- Parse ---
	expr, err := parsePhase(ctx, req.Function, variable)
	if err != nil {
		writeFailure(ctx, w, span, logger, "parse", err.Error(), err)
		return
	}

	// --- Antiderivative ---
	anti, err := antiderivativePhase(ctx, expr, variable)
	if err != nil {
		writeFailure(ctx, w, span, logger, "antiderivative", err.Error(), err)
		return
	}

	result := CalculationResult{
		Success:      true,
		Integral:     anti.LaTeX(),
		IntegralText: anti.String(),
	}

	// --- Plot series ---
	// Each series compiles and samples independently; an expression that
	// cannot be evaluated numerically still yields the symbolic result.
	xs := Linspace(PlotLo, PlotHi, PlotPoints)
	result.FunctionPoints = samplePhase(ctx, "integrals.sample.function", expr, variable, xs)
	result.IntegralPoints = samplePhase(ctx, "integrals.sample.integral", anti, variable, xs)

	// --- Definite integral and shaded area ---
	lower, lowerOK := req.LowerLimit.Float()
	upper, upperOK := req.UpperLimit.Float()
	if lowerOK && upperOK {
		result.DefiniteValue, result.AreaPoints = definitePhase(ctx, logger, expr, anti, variable, lower, upper)
		if result.DefiniteValue != nil {
			definiteGauge.Record(ctx, *result.DefiniteValue)
			span.SetAttributes(attribute.Float64("integrals.definite_value", *result.DefiniteValue))
		}
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	durationHistogram.Record(ctx, elapsed)

	span.AddEvent("calculation.complete", trace.WithAttributes(
		attribute.String("integral", result.IntegralText),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("integral calculated",
		zap.String("function", req.Function),
		zap.String("variable", variable),
		zap.String("integral", result.IntegralText),
		zap.Bool("definite", result.DefiniteValue != nil),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, result)
}

// parsePhase parses the raw expression and checks that it depends on no
// symbol other than the integration variable.
func parsePhase(ctx context.Context, input, variable string) (symbol.Expr, error) {
	_, span := tracer.Start(ctx, "integrals.parse")
	defer span.End()

	expr, err := symbol.Parse(input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, fmt.Errorf("could not parse expression: %v", err)
	}

	for name := range symbol.FreeVars(expr) {
		if name != variable {
			err := fmt.Errorf("expression contains unknown symbol %q", name)
			span.RecordError(err)
			span.SetStatus(codes.Error, "unknown symbol")
			return nil, err
		}
	}

	span.SetStatus(codes.Ok, "")
	return expr, nil
}

// antiderivativePhase computes the symbolic antiderivative. The constant of
// integration is omitted from the result.
func antiderivativePhase(ctx context.Context, expr symbol.Expr, variable string) (symbol.Expr, error) {
	_, span := tracer.Start(ctx, "integrals.antiderivative",
		trace.WithAttributes(attribute.String("integrals.variable", variable)),
	)
	defer span.End()

	anti, ok := Indefinite(expr, variable)
	if !ok {
		err := fmt.Errorf("could not find an antiderivative for %s", expr.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, "no antiderivative")
		return nil, err
	}

	span.SetAttributes(attribute.String("integrals.antiderivative", anti.String()))
	span.SetStatus(codes.Ok, "")
	return anti, nil
}

// samplePhase compiles an expression and samples it over xs. A nil return
// means the expression has no numeric form; per-point failures surface as
// null entries inside the series instead.
func samplePhase(ctx context.Context, spanName string, expr symbol.Expr, variable string, xs []float64) *SampleSeries {
	_, span := tracer.Start(ctx, spanName)
	defer span.End()

	f, err := Compile(expr, variable)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compile failed")
		return nil
	}

	series := NewSampleSeries(xs, Sample(f, xs))
	span.SetAttributes(attribute.Int("integrals.points", len(series.X)))
	span.SetStatus(codes.Ok, "")
	return series
}

// definitePhase evaluates the definite integral and the shaded-area series.
// Failures here are deliberately soft: a divergent or non-evaluable definite
// integral drops the optional fields without failing the whole request.
func definitePhase(ctx context.Context, logger *zap.Logger, expr, anti symbol.Expr, variable string, lower, upper float64) (*float64, *SampleSeries) {
	_, span := tracer.Start(ctx, "integrals.definite",
		trace.WithAttributes(
			attribute.Float64("integrals.lower", lower),
			attribute.Float64("integrals.upper", upper),
		),
	)
	defer span.End()

	v, ok := Definite(expr, anti, variable, lower, upper)
	if !ok {
		// Both optional fields stay absent when the integral does not
		// evaluate to a real number over the interval.
		logger.Warn("definite integral not evaluable over interval",
			zap.Float64("lower", lower),
			zap.Float64("upper", upper),
		)
		span.SetStatus(codes.Ok, "")
		return nil, nil
	}

	var area *SampleSeries
	if xs, ys, areaOK := Area(expr, variable, lower, upper); areaOK {
		area = NewSampleSeries(xs, ys)
	}

	span.SetStatus(codes.Ok, "")
	return &v, area
}

// writeFailure records the failure on the span, metrics and log, then writes
// the error envelope. The HTTP status stays 200 on purpose.
func writeFailure(ctx context.Context, w http.ResponseWriter, span trace.Span, logger *zap.Logger, phase, msg string, err error) {
	observability.RecordError(ctx, span, logger, errorCounter, phase, msg, err)
	requestCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
	handlers.WriteJSON(w, http.StatusOK, CalculationError{Success: false, Error: msg})
}
