package keyguard

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/oxyzenq/keyguard"

// Outcomes recorded for secret requests.
const (
	outcomeReleased = "released"
	outcomeDenied   = "denied"
	outcomeNoDevice = "no_device"
	outcomeFailed   = "failed"
)

type telemetry struct {
	tracer          trace.Tracer
	checkRuns       metric.Int64Counter
	secretRequests  metric.Int64Counter
	integrityChecks metric.Int64Counter
}

func newTelemetry(mp metric.MeterProvider, tp trace.TracerProvider) (*telemetry, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	checkRuns, err := meter.Int64Counter("keyguard.check.runs",
		metric.WithDescription("Environment checks evaluated"),
		metric.WithUnit("{check}"))
	if err != nil {
		return nil, fmt.Errorf("keyguard: check counter: %w", err)
	}
	secretRequests, err := meter.Int64Counter("keyguard.secret.requests",
		metric.WithDescription("Secret reconstruction requests by outcome"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, fmt.Errorf("keyguard: request counter: %w", err)
	}
	integrityChecks, err := meter.Int64Counter("keyguard.integrity.checks",
		metric.WithDescription("Fragment table integrity checks"),
		metric.WithUnit("{check}"))
	if err != nil {
		return nil, fmt.Errorf("keyguard: integrity counter: %w", err)
	}

	return &telemetry{
		tracer:          tp.Tracer(instrumentationName),
		checkRuns:       checkRuns,
		secretRequests:  secretRequests,
		integrityChecks: integrityChecks,
	}, nil
}

func (t *telemetry) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "keyguard."+op)
}

func (t *telemetry) recordCheck(ctx context.Context, name string, detected bool) {
	t.checkRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", name),
		attribute.Bool("detected", detected),
	))
}

func (t *telemetry) recordRequest(ctx context.Context, outcome string) {
	t.secretRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (t *telemetry) recordIntegrity(ctx context.Context, ok bool) {
	t.integrityChecks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", ok)))
}
