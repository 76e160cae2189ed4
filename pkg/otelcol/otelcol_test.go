package otelcol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx/fxtest"

	"workshop-backend/pkg/config"
)

func TestProvideTracerProviderDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Otel.Exporter = config.ExporterNone

	lc := fxtest.NewLifecycle(t)
	tp, err := ProvideTracerProvider(lc, cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)
}

func TestNewTracerProviderExportsSpans(t *testing.T) {
	cfg := &config.Config{AppName: "workshop-backend", AppEnv: "test"}
	cfg.Otel.SampleRatio = 1

	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider(exporter, cfg)

	_, span := tp.Tracer("test").Start(context.Background(), "report.generate")
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "report.generate", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	require.Equal(t, "workshop-backend", service)
}
