package vectorstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestQdrantConfig_Defaults(t *testing.T) {
	cfg := QdrantConfig{VectorSize: 384}
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, "policybot_docs", cfg.Collection)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBackoff)
	assert.NoError(t, cfg.Validate())
}

func TestQdrantConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  QdrantConfig
	}{
		{"missing host", QdrantConfig{Port: 6334, Collection: "c", VectorSize: 3}},
		{"bad port", QdrantConfig{Host: "h", Port: 70000, Collection: "c", VectorSize: 3}},
		{"no vector size", QdrantConfig{Host: "h", Port: 6334, Collection: "c"}},
		{"bad collection", QdrantConfig{Host: "h", Port: 6334, Collection: "Nope!", VectorSize: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestIsTransientError(t *testing.T) {
	assert.False(t, IsTransientError(nil))
	assert.False(t, IsTransientError(fmt.Errorf("plain")))
	assert.True(t, IsTransientError(status.Error(grpccodes.Unavailable, "down")))
	assert.True(t, IsTransientError(status.Error(grpccodes.DeadlineExceeded, "slow")))
	assert.False(t, IsTransientError(status.Error(grpccodes.InvalidArgument, "bad")))
	assert.False(t, IsTransientError(status.Error(grpccodes.NotFound, "gone")))
}

func TestPointID_Stable(t *testing.T) {
	u := "6f1c2b7e-2b1a-4b8e-9b61-2f3f7d1c8a90"
	assert.Equal(t, u, pointID(u).GetUuid())
	assert.Equal(t, pointID("chunk-1").GetUuid(), pointID("chunk-1").GetUuid())
	assert.NotEqual(t, pointID("chunk-1").GetUuid(), pointID("chunk-2").GetUuid())
}

func TestRetryOperation(t *testing.T) {
	s := &QdrantStore{config: QdrantConfig{MaxRetries: 2, RetryBackoff: time.Millisecond}, logger: zap.NewNop()}

	calls := 0
	err := s.retryOperation(t.Context(), "op", func() error {
		calls++
		if calls < 3 {
			return status.Error(grpccodes.Unavailable, "down")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = s.retryOperation(t.Context(), "op", func() error {
		calls++
		return status.Error(grpccodes.InvalidArgument, "bad")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
