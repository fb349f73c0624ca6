// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/config"
)

func TestSampleRate(t *testing.T) {
	assert.InDelta(t, defaultSampleRate, sampleRate(0), 1e-9)
	assert.InDelta(t, defaultSampleRate, sampleRate(1.5), 1e-9)
	assert.InDelta(t, 0.25, sampleRate(0.25), 1e-9)
	assert.InDelta(t, 1.0, sampleRate(1), 1e-9)
}

func TestDisabledTelemetry(t *testing.T) {
	tel, err := NewTelemetry(
		context.Background(),
		config.OtelConfig{Enabled: false},
		config.AppConfig{Version: "test"},
	)
	require.NoError(t, err)
	require.NotNil(t, tel.Tracer)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "unit")
	end(errors.New("boom"))

	assert.Empty(t, TraceIDFromContext(ctx))
}
