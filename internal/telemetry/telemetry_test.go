package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNew_NoOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no config"},
		{name: "disabled", opts: []Option{WithTelemetryConfig(&Config{Enabled: false})}},
		{
			name: "enabled without signals",
			opts: []Option{WithTelemetryConfig(&Config{
				Enabled: true,
				Tracing: &TracingConfig{Enabled: false},
				Metrics: &MetricsConfig{Enabled: false},
			})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tel, err := New(context.Background(), tt.opts...)
			require.NoError(t, err)

			_, isNoopTracer := tel.TracerProvider().(tracenoop.TracerProvider)
			assert.True(t, isNoopTracer)
			_, isNoopMeter := tel.MeterProvider().(metricnoop.MeterProvider)
			assert.True(t, isNoopMeter)
			assert.Nil(t, tel.MetricsHandler())
			assert.NotNil(t, tel.Tracer("test"))

			assert.NoError(t, tel.Shutdown(context.Background()))
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: true,
		Tracing: &TracingConfig{Enabled: true, Sampling: 2},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry configuration")
}

// The Prometheus exporter sets the global meter provider, so this test does
// not run in parallel.
func TestNew_PrometheusExporter(t *testing.T) {
	tel, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: true,
		Metrics: &MetricsConfig{Enabled: true, Exporter: ExporterPrometheus},
	}))
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(context.Background()) }()

	_, isSDK := tel.MeterProvider().(*sdkmetric.MeterProvider)
	require.True(t, isSDK)
	require.NotNil(t, tel.MetricsHandler())

	metrics, err := NewPartitionMetrics(tel.MeterProvider())
	require.NoError(t, err)
	metrics.RecordRemaining(context.Background(), 5)

	rr := httptest.NewRecorder()
	tel.MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "asset_librarian_remaining_assets")
}
