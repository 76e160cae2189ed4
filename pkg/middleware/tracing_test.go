package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestTracingRecordsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var seen trace.SpanContext
	r := gin.New()
	r.Use(Tracing())
	r.GET("/jobs/:jobId", func(c *gin.Context) {
		seen = trace.SpanContextFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/jobs/abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.True(t, seen.IsValid())

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	require.Equal(t, "GET /jobs/:jobId", spans[0].Name())
	require.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	require.Equal(t, seen.TraceID(), spans[0].SpanContext().TraceID())
	require.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", http.StatusOK))

	require.Equal(t, "GET /boom", spans[1].Name())
	require.Equal(t, codes.Error, spans[1].Status().Code)
}
