package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premium-service/internal/common/config"
	"premium-service/internal/common/logger"
)

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, 1*time.Second, backoff(0, rc))
	assert.Equal(t, 2*time.Second, backoff(1, rc))
	assert.Equal(t, 8*time.Second, backoff(3, rc))
	assert.Equal(t, 10*time.Second, backoff(4, rc))
	assert.Equal(t, 10*time.Second, backoff(70, rc))
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"i/o timeout", true},
		{"rpc error: code = PermissionDenied", false},
		{"invalid gateway address", false},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 1500})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 1500*time.Millisecond, cfg.ConnectionTimeout)
	assert.True(t, cfg.UsePlaintextConnection)

	assert.Equal(t, 30*time.Second, ConfigFrom(config.CamundaConfig{}).ConnectionTimeout)
}

func TestConnect_CancelledWhileBackingOff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	cfg := &ClientConfig{
		// Nothing listens on the discard port.
		GatewayAddress:         "127.0.0.1:9",
		UsePlaintextConnection: true,
		ConnectionTimeout:      50 * time.Millisecond,
		RetryConfig:            &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second},
	}

	client, err := Connect(ctx, cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Nil(t, client)
}
