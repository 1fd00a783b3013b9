package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestEnvelopeWithoutTrace(t *testing.T) {
	appErr := Unauthorized("Unauthorized")
	payload, err := json.Marshal(appErr.Envelope(context.Background()))
	require.NoError(t, err)

	// trace_id is omitted entirely when no span is active.
	assert.JSONEq(t, `{"code":401,"message":"Unauthorized"}`, string(payload))
}

func TestEnvelopeWithTrace(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	resp := NotFound("missing").Envelope(ctx)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, spanCtx.TraceID().String(), resp.TraceID)
}

func TestConstructorsCarryCanonicalMessages(t *testing.T) {
	assert.Equal(t, "Method not allowed", MethodNotAllowed().Message)
	assert.Equal(t, http.StatusMethodNotAllowed, MethodNotAllowed().Status)
	assert.Equal(t, "Payload too large", PayloadTooLarge().Message)
	assert.Equal(t, http.StatusRequestEntityTooLarge, PayloadTooLarge().Status)
	assert.Equal(t, http.StatusUnprocessableEntity, UnprocessableEntity("x").Status)
}

func TestWithCauseAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	appErr := InternalServerError("upstream failed").WithCause(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Message, "connection refused")
}

func TestFromError(t *testing.T) {
	appErr := BadRequest("nope")
	assert.Same(t, appErr, FromError(appErr))

	converted := FromError(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, converted.Status)
	assert.Equal(t, "boom", converted.Message)
}
