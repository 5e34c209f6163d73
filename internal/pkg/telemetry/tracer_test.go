package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/telemetry"
)

func TestStartSpan_RecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	_, span := telemetry.StartSpan(context.Background(), "places.search", attribute.Int("limit", 20))
	telemetry.EndSpan(span, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "places.search" {
		t.Errorf("expected span name places.search, got %s", spans[0].Name())
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected error event on span")
	}
}
