package camunda

import (
	"fmt"
	"testing"
	"time"

	apperrors "dinefine-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(fmt.Errorf("%s", tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg      string
		wantCode apperrors.ErrorCode
	}{
		{"connection refused", "EXTERNAL_SERVICE_ERROR"},
		{"context deadline exceeded", "TIMEOUT_ERROR"},
		{"job not found", "RESOURCE_NOT_FOUND"},
		{"unauthorized", "AUTHENTICATION_ERROR"},
		{"something odd", "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(fmt.Errorf("%s", tt.msg), "topology", 2)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, time.Second, backoff(cfg, 0))
	assert.Equal(t, 4*time.Second, backoff(cfg, 2))
	assert.Equal(t, 10*time.Second, backoff(cfg, 4))
	assert.Equal(t, 10*time.Second, backoff(cfg, 70))
}
