package telemetry

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestFiberMiddlewareRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		AddSpanEvent(c, "ping.handled")
		SetSpanAttribute(c, "ping.flavor", "test")
		return c.SendString("pong")
	})

	req, err := http.NewRequest(http.MethodGet, "/ping", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /ping", span.Name())

	eventNames := make([]string, 0, len(span.Events()))
	for _, ev := range span.Events() {
		eventNames = append(eventNames, ev.Name)
	}
	assert.Contains(t, eventNames, "ping.handled")

	found := false
	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("ping.flavor") {
			found = true
			assert.Equal(t, "test", attr.Value.AsString())
		}
	}
	assert.True(t, found, "handler attribute missing from span")
}
