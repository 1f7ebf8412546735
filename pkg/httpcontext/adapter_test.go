package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appLogger "github.com/fastygo/tracker/pkg/logger"
)

func TestAttachPropagatesRequestMetadata(t *testing.T) {
	var req fasthttp.RequestCtx
	req.Request.Header.Set("X-Request-ID", "req-42")
	req.Request.Header.Set(userHeader, "u1")
	req.Request.Header.SetUserAgent("tracker-test")

	ctx, cancel := NewAdapter(time.Second).Attach(&req)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
	assert.Equal(t, "req-42", string(req.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "tracker-test", ctx.Value(KeyUserAgent))

	core, logs := observer.New(zap.InfoLevel)
	appLogger.WithRequestID(ctx, zap.New(core)).Info("handled")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "u1", fields["user_id"])
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var req fasthttp.RequestCtx

	_, cancel := NewAdapter(0).Attach(&req)
	defer cancel()

	assert.Len(t, string(req.Response.Header.Peek("X-Request-ID")), 36)
}
