// Package telemetry provides OpenTelemetry tracing and metrics for policybot.
//
// When enabled, spans and metrics are exported over OTLP (gRPC or
// HTTP/protobuf) to a collector. When disabled, Tracer and Meter hand out
// the global no-op providers so instrumented code needs no nil checks.
//
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, span := tel.Tracer("policybot.ragbot").Start(ctx, "ragbot.Query")
//	defer span.End()
//
// Exporter construction failures mark the instance degraded rather than
// failing startup. Tests use NewTestTelemetry for in-memory recording.
package telemetry
