package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.Register("pipeline", logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, &buf, "test"))
	t.Cleanup(logger.Reset)
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		lines = append(lines, m)
	}
	return lines
}

func findLog(lines []map[string]any, msg string) map[string]any {
	for _, l := range lines {
		if l["message"] == msg {
			return l
		}
	}
	return nil
}

func TestWithLogging(t *testing.T) {
	buf := captureLogs(t)
	p := WithLogging(FromSlice([]int{1, 2, 3}), "numbers")
	if _, err := Collect(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	lines := logLines(t, buf)
	done := findLog(lines, "stage finished")
	if done == nil {
		t.Fatalf("no stage finished line in %v", lines)
	}
	if done[logger.FieldStage] != "numbers" || done[logger.FieldElements] != float64(3) {
		t.Errorf("unexpected fields %v", done)
	}
	if id, _ := done[logger.FieldRunID].(string); id == "" {
		t.Error("expected run_id on stage log")
	}
	if findLog(lines, "stage started") == nil {
		t.Error("expected stage started line")
	}
}

func TestWithLogging_Error(t *testing.T) {
	buf := captureLogs(t)
	p := Map(FromSlice([]int{1, 2}), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errBoom
		}
		return n, nil
	})
	if _, err := Collect(context.Background(), WithLogging(p, "fails")); err == nil {
		t.Fatal("expected error")
	}

	failed := findLog(logLines(t, buf), "stage failed")
	if failed == nil {
		t.Fatal("expected stage failed line")
	}
	if failed["level"] != "error" || failed[logger.FieldElements] != float64(1) {
		t.Errorf("unexpected fields %v", failed)
	}
}

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	p := WithMetrics(FromSlice([]int{1, 2, 3, 4}), "numbers", metrics)
	if _, _, err := First(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := Collect(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums["stage.elements"] != 5 {
		t.Errorf("stage.elements = %d, want 5", sums["stage.elements"])
	}
	if sums["stage.active"] != 0 {
		t.Errorf("stage.active = %d, want 0", sums["stage.active"])
	}
}

func TestWithMetrics_NilIsPassthrough(t *testing.T) {
	p := FromSlice([]int{1})
	if WithMetrics(p, "x", nil) != p {
		t.Error("expected the same pipeline")
	}
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	ok := WithTracing(FromSlice([]int{1, 2}), "seqctl", "ok")
	if _, err := Collect(context.Background(), ok); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	canceled := WithTracing(Tap(FromSlice([]int{1, 2}), func(context.Context, int) error {
		cancel()
		return nil
	}), "seqctl", "canceled")
	if _, err := Collect(ctx, canceled); err == nil {
		t.Fatal("expected cancellation")
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	attrs := attribute.NewSet(spans[0].Attributes...)
	if v, _ := attrs.Value(observability.AttrElements); v.AsInt64() != 2 {
		t.Errorf("elements = %v", v)
	}
	if v, _ := attrs.Value(observability.AttrRunID); v.AsString() == "" {
		t.Error("expected run id attribute")
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("canceled stage status = %v", spans[1].Status)
	}
	attrs = attribute.NewSet(spans[1].Attributes...)
	if v, _ := attrs.Value(observability.AttrStatus); v.AsString() != observability.StatusCancelled {
		t.Errorf("status = %v", v)
	}
}
