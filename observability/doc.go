// Package observability wires OpenTelemetry metrics and tracing into
// seqkit pipelines.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("seqctl"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("seqctl"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("seqctl"))
//	metrics.RecordStageEnd(ctx, "merge", n, observability.StatusOK, elapsed)
//
// Stage tracking combines both around one pipeline stage:
//
//	st := observability.NewStageTracker("seqctl", "join", runID, metrics)
//	ctx, span := st.Start(ctx)
//	defer st.End(ctx, span, n, err)
package observability
