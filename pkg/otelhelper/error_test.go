package otelhelper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/flowgrid/flowgrid/pkg/otelhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := otelhelper.StartSpan(context.Background(), tracer, "workflow.save",
		attribute.String(otelhelper.WorkflowIDKey, "wf-1"))
	otelhelper.SetError(span, errors.New("storage unavailable"),
		attribute.String(otelhelper.NodeIDKey, "n1"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	recorded := spans[0]
	assert.Equal(t, "workflow.save", recorded.Name())
	assert.Equal(t, codes.Error, recorded.Status().Code)
	assert.Equal(t, "storage unavailable", recorded.Status().Description)
	assert.Contains(t, recorded.Attributes(), attribute.String(otelhelper.WorkflowIDKey, "wf-1"))

	// RecordError adds the exception event, SetError adds its own with
	// the extra attributes.
	names := make([]string, 0, len(recorded.Events()))
	for _, event := range recorded.Events() {
		names = append(names, event.Name)

		if event.Name == "error_occurred" {
			assert.Contains(t, event.Attributes, attribute.String(otelhelper.NodeIDKey, "n1"))
		}
	}

	assert.Contains(t, names, "exception")
	assert.Contains(t, names, "error_occurred")
}

func TestStartSpan_NoError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := otelhelper.StartSpan(context.Background(), tracer, "workflow.load")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}
