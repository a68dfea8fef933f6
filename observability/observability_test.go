package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

func newTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	return metrics, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	s, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", data)
	}
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("seqctl")
	if cfg.ServiceName != "seqctl" {
		t.Errorf("expected ServiceName 'seqctl', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if err := validation.Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestTracerConfig_Validate(t *testing.T) {
	cfg := DefaultTracerConfig("seqctl")
	cfg.SampleRate = 2
	cfg.Endpoint = "no-port"
	if err := validation.Validate(cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("seqctl")
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
	if err := validation.Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordStageStart(ctx, "map")
	metrics.RecordStageEnd(ctx, "map", 3, StatusOK, 10*time.Millisecond)
	metrics.RecordError(ctx, "STORAGE_ERROR", "blockstore")
}

func TestMetrics_StageRecording(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordStageStart(ctx, "merge")
	metrics.RecordStageStart(ctx, "join")
	metrics.RecordStageEnd(ctx, "merge", 5, StatusOK, 20*time.Millisecond)
	metrics.RecordError(ctx, "INVARIANT_VIOLATION", "flatMap")

	data := collectMetrics(t, reader)
	if got := sumOf(t, data["stage.elements"]); got != 5 {
		t.Errorf("stage.elements = %d, want 5", got)
	}
	if got := sumOf(t, data["stage.active"]); got != 1 {
		t.Errorf("stage.active = %d, want 1", got)
	}
	if got := sumOf(t, data["error.total"]); got != 1 {
		t.Errorf("error.total = %d, want 1", got)
	}
	hist, ok := data["stage.duration"].(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("unexpected stage.duration data %#v", data["stage.duration"])
	}
}

func TestStageTracker(t *testing.T) {
	exporter := newTestTracer(t)
	metrics, reader := newTestMetrics(t)

	st := NewStageTracker("seqctl", "reduce", "run-1", metrics)
	ctx, span := st.Start(context.Background())
	if StageTrackerFromContext(ctx) != st {
		t.Fatal("expected tracker in context")
	}
	st.End(ctx, span, 4, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanPipelineStage {
		t.Errorf("span name = %q", spans[0].Name)
	}
	attrs := attribute.NewSet(spans[0].Attributes...)
	if v, _ := attrs.Value(AttrRunID); v.AsString() != "run-1" {
		t.Errorf("run id = %v", v)
	}
	if v, _ := attrs.Value(AttrElements); v.AsInt64() != 4 {
		t.Errorf("elements = %v", v)
	}
	if v, _ := attrs.Value(AttrStatus); v.AsString() != StatusOK {
		t.Errorf("status = %v", v)
	}

	data := collectMetrics(t, reader)
	if got := sumOf(t, data["stage.elements"]); got != 4 {
		t.Errorf("stage.elements = %d, want 4", got)
	}
	if got := sumOf(t, data["stage.active"]); got != 0 {
		t.Errorf("stage.active = %d, want 0", got)
	}
}

func TestStageTracker_Error(t *testing.T) {
	exporter := newTestTracer(t)
	st := NewStageTracker("seqctl", "decode", "", nil)
	ctx, span := st.Start(context.Background())
	st.End(ctx, span, 0, apperrors.Corrupt("map header", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v", spans[0].Status)
	}
	attrs := attribute.NewSet(spans[0].Attributes...)
	if v, _ := attrs.Value(AttrErrorCode); v.AsString() != string(apperrors.ErrCodeCorrupt) {
		t.Errorf("error code = %v", v)
	}
	if _, ok := attrs.Value(AttrRunID); ok {
		t.Error("empty run id should not be recorded")
	}
}

func TestStageTrackerFromContext_NotSet(t *testing.T) {
	if StageTrackerFromContext(context.Background()) != nil {
		t.Error("expected nil")
	}
}

func TestStageTracker_DurationBeforeStart(t *testing.T) {
	if d := NewStageTracker("s", "x", "", nil).Duration(); d != 0 {
		t.Errorf("duration = %v, want 0", d)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusOK},
		{context.Canceled, StatusCancelled},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), StatusCancelled},
		{apperrors.Canceled(nil), StatusCancelled},
		{apperrors.Storage("scan", nil), StatusError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(apperrors.Exhausted()); got != "EXHAUSTED" {
		t.Errorf("got %q", got)
	}
	if got := ErrorCode(fmt.Errorf("plain")); got != string(apperrors.ErrCodeInternal) {
		t.Errorf("got %q", got)
	}
}

func TestSetSpanAttribute(t *testing.T) {
	exporter := newTestTracer(t)
	ctx, span := StartSpan(context.Background(), "attrs")
	SetSpanAttribute(ctx, "string-key", "value")
	SetSpanAttribute(ctx, "int-key", 42)
	SetSpanAttribute(ctx, "int64-key", int64(100))
	SetSpanAttribute(ctx, "float-key", 3.14)
	SetSpanAttribute(ctx, "bool-key", true)
	SetSpanAttribute(ctx, "string-slice-key", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported-key", struct{}{})
	span.End()

	attrs := attribute.NewSet(exporter.GetSpans()[0].Attributes...)
	if attrs.Len() != 6 {
		t.Errorf("expected 6 attributes, got %d", attrs.Len())
	}
}

func TestSetSpanNoSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("no span error"))
}

func TestSetSpanError(t *testing.T) {
	exporter := newTestTracer(t)
	ctx, span := StartSpan(context.Background(), "err")
	SetSpanError(ctx, fmt.Errorf("test error"))
	span.End()
	if events := exporter.GetSpans()[0].Events; len(events) != 1 {
		t.Errorf("expected one error event, got %d", len(events))
	}
}

type staticChecker Health

func (c staticChecker) CheckHealth(context.Context) Health { return Health(c) }

func TestCheckAll(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"no components", nil, HealthStatusUp},
		{"all up", []HealthStatus{HealthStatusUp, HealthStatusUp}, HealthStatusUp},
		{"degraded", []HealthStatus{HealthStatusUp, HealthStatusDegraded}, HealthStatusDegraded},
		{"down wins", []HealthStatus{HealthStatusDown, HealthStatusDegraded}, HealthStatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkers := make([]HealthChecker, len(tt.statuses))
			for i, s := range tt.statuses {
				checkers[i] = staticChecker{Name: fmt.Sprintf("c%d", i), Status: s}
			}
			sh := CheckAll(context.Background(), "seqctl", checkers...)
			if sh.Status != tt.want {
				t.Errorf("status = %s, want %s", sh.Status, tt.want)
			}
			if len(sh.Components) != len(tt.statuses) {
				t.Errorf("components = %d", len(sh.Components))
			}
		})
	}
}

func shutdownCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	for _, rate := range []float64{1.0, 0.0, 0.5} {
		cfg := DefaultTracerConfig("seqctl")
		cfg.SampleRate = rate
		tp, err := InitTracer(context.Background(), cfg)
		if err != nil {
			t.Fatalf("InitTracer(rate=%v): %v", rate, err)
		}
		_ = tp.Shutdown(shutdownCtx(t))
	}
}

func TestInitMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	cfg := DefaultMeterConfig("seqctl")
	cfg.Interval = time.Hour
	mp, err := InitMeter(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	_ = mp.Shutdown(shutdownCtx(t))
}
