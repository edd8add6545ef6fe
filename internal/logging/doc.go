// Package logging provides structured logging with OpenTelemetry integration.
//
// The package wraps Zap with:
//   - A custom Trace level (-2, below Debug)
//   - Dual output (stdout and an OpenTelemetry log bridge)
//   - Context field injection (trace_id, span_id, request.id)
//   - Secret redaction by field name and value pattern
//   - Sampling below error level
//
// Create a logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	ctx = logging.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))
//	logger.Info(ctx, "document indexed", zap.String("path", path), zap.Int("chunks", n))
//
// Tests use NewTestLogger, which records entries in memory:
//
//	tl := logging.NewTestLogger()
//	svc := assistant.New(assistant.Config{Logger: tl.Logger, ...})
//	tl.AssertLogged(t, zapcore.InfoLevel, "document indexed")
package logging
