package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fyrsmithlabs/policybot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "console", mutate: func(c *Config) { c.Format = "console" }},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }, wantErr: "format must be"},
		{
			name:    "no outputs",
			mutate:  func(c *Config) { c.Output.Stdout = false },
			wantErr: "at least one output",
		},
		{
			name:    "zero tick",
			mutate:  func(c *Config) { c.Sampling.Tick = 0 },
			wantErr: "sampling tick",
		},
		{
			name:    "bad pattern",
			mutate:  func(c *Config) { c.Redaction.Patterns = []string{"("} },
			wantErr: "invalid redaction pattern",
		},
		{
			name:    "empty field value",
			mutate:  func(c *Config) { c.Fields["env"] = "" },
			wantErr: "empty value",
		},
		{
			name:    "otel only without provider",
			mutate:  func(c *Config) { c.Output.Stdout = false; c.Output.OTEL = true },
			wantErr: "at least one output must be enabled and available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			logger, err := NewLogger(cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Enabled(zapcore.InfoLevel))
			assert.False(t, logger.Enabled(zapcore.DebugLevel))
			assert.NoError(t, logger.Sync())
		})
	}
}

func TestLogger_ContextFields(t *testing.T) {
	tl := NewTestLogger()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-42")

	tl.Info(ctx, "document indexed", zap.Int("chunks", 3))

	tl.AssertLogged(t, zapcore.InfoLevel, "document indexed")
	tl.AssertField(t, "document indexed", "trace_id", "4bf92f3577b34da6a3ce929d0e0e4736")
	tl.AssertField(t, "document indexed", "request.id", "req-42")
}

func TestWithRequestID_RejectsInvalid(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "", RequestIDFromContext(WithRequestID(ctx, "")))
	assert.Equal(t, "", RequestIDFromContext(WithRequestID(ctx, "bad id\n")))
	assert.Equal(t, "abc_123-x", RequestIDFromContext(WithRequestID(ctx, "abc_123-x")))
}

func TestFromContext(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Warn(ctx, "from context")
	tl.AssertLogged(t, zapcore.WarnLevel, "from context")

	// A bare context yields a usable nop logger.
	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info(context.Background(), "dropped")
	})
}

func TestLogger_TraceLevel(t *testing.T) {
	tl := NewTestLogger()
	tl.Trace(context.Background(), "chunk embedded")
	tl.AssertLogged(t, TraceLevel, "chunk embedded")

	core, observed := observer.New(zapcore.InfoLevel)
	quiet := FromZap(zap.New(core))
	quiet.Trace(context.Background(), "chunk embedded")
	assert.Zero(t, observed.Len())
}

func TestLogger_CallerPointsAtCallSite(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core, zap.AddCaller()))

	logger.Info(context.Background(), "via wrapper")
	logger.Underlying().Info("via zap")
	logger.Named("http").Underlying().Info("via named zap")
	logger.With(zap.String("k", "v")).Warn(context.Background(), "via child")

	require.Equal(t, 4, observed.Len())
	for _, entry := range observed.All() {
		assert.True(t, entry.Caller.Defined, entry.Message)
		assert.Equal(t, "logger_test.go", filepath.Base(entry.Caller.File), entry.Message)
	}
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]zapcore.Level{
		"trace": TraceLevel,
		"DEBUG": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := LevelFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := LevelFromString("loud")
	assert.Error(t, err)
}

func TestRedactingEncoder(t *testing.T) {
	cfg := NewDefaultConfig()
	enc, err := NewRedactingEncoder(newEncoder("json"), cfg.Redaction)
	require.NoError(t, err)

	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Now(),
		Message: "calling provider",
	}, []zapcore.Field{
		zap.String("api_key", "plain-secret"),
		zap.String("header", "Bearer abc.def"),
		zap.String("note", "contains sk-ABCDEFGHIJKLMNOPQRSTUV"),
		zap.String("model", "gpt-4o-mini"),
	})
	require.NoError(t, err)
	out := buf.String()

	assert.NotContains(t, out, "plain-secret")
	assert.NotContains(t, out, "abc.def")
	assert.NotContains(t, out, "sk-ABCDEFGHIJKLMNOPQRSTUV")
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, `"api_key":"[REDACTED]"`)
}

func TestRedactingEncoder_WithFields(t *testing.T) {
	cfg := NewDefaultConfig()
	enc, err := NewRedactingEncoder(newEncoder("json"), cfg.Redaction)
	require.NoError(t, err)

	clone := enc.Clone()
	clone.AddString("token", "t0k3n")
	buf, err := clone.EncodeEntry(zapcore.Entry{Message: "x"}, nil)
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "t0k3n")
}

func TestSecretField(t *testing.T) {
	f := Secret("openai_key", config.Secret("sk-12345"))
	assert.Equal(t, "[REDACTED:8]", f.String)

	f = RedactedString("blob", "abc")
	assert.Equal(t, "[REDACTED:3]", f.String)
}

func TestSampledCore_ErrorsNeverSampled(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled:    true,
		Tick:       time.Minute,
		Initial:    1,
		Thereafter: 0,
	})
	logger := zap.New(sampled)

	for i := 0; i < 5; i++ {
		logger.Info("repeated")
		logger.Error("failure")
	}

	assert.Equal(t, 1, observed.FilterMessage("repeated").Len())
	assert.Equal(t, 5, observed.FilterMessage("failure").Len())
}

func TestSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	assert.Same(t, core, newSampledCore(core, SamplingConfig{Enabled: false}))
}
