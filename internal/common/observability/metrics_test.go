package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObservability(t *testing.T) (*Observability, *prom.Registry, *tracetest.SpanRecorder) {
	t.Helper()
	reg := prom.NewRegistry()
	recorder := tracetest.NewSpanRecorder()

	obs, err := New("premium-service-test",
		WithRegisterer(reg),
		WithSpanProcessor(recorder),
		WithoutGlobal(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	return obs, reg, recorder
}

func TestObservability_RecordProjection(t *testing.T) {
	obs, reg, _ := newTestObservability(t)
	ctx := context.Background()

	obs.RecordProjection(ctx, "success")
	obs.RecordProjection(ctx, "PREMIUM_NOT_FOUND")
	obs.RecordProjectionDuration(ctx, 3*time.Millisecond, "success")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "projections_processed")
	assert.Contains(t, joined, "projections_duration")
}

func TestObservability_StartSpan(t *testing.T) {
	obs, _, recorder := newTestObservability(t)

	_, span := obs.StartSpan(context.Background(), "premium.project",
		attribute.String("company", "acme"),
	)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "premium.project", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("company", "acme"))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability

	assert.NotPanics(t, func() {
		obs.RecordProjection(context.Background(), "success")
		obs.RecordProjectionDuration(context.Background(), time.Millisecond, "success")
		_, span := obs.StartSpan(context.Background(), "noop")
		span.End()
	})
	assert.NoError(t, obs.Shutdown(context.Background()))
}
