package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	o := New("content-policy-test", recorder)
	t.Cleanup(o.Shutdown)

	ctx, span := o.StartSpan(context.Background(), "policy.evaluate", attribute.String("tier", "adult"))
	require.NotNil(t, ctx)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "policy.evaluate", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("tier", "adult"))
}

func TestStartSpan_ZeroValueIsNoop(t *testing.T) {
	var o Observability
	_, span := o.StartSpan(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestRecorders_DoNotPanic(t *testing.T) {
	o := New("content-policy-test")
	t.Cleanup(o.Shutdown)

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "evaluate-content", "completed")
	o.RecordJobDuration(ctx, "evaluate-content", 15*time.Millisecond, "completed")
	o.RecordEvaluation(ctx, "adult", "approved")

	var zero Observability
	zero.RecordJobProcessed(ctx, "x", "failed")
	zero.RecordEvaluation(ctx, "adult", "rejected")
	zero.Shutdown()
}
