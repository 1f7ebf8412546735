package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/middleware"
	"github.com/fastygo/tracker/pkg/httpcontext"
	appLogger "github.com/fastygo/tracker/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := sonic.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		return
	}
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	if status == http.StatusNoContent {
		ctx.SetStatusCode(status)
		return
	}
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, data interface{}, meta transport.PageMeta) {
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, meta))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(h.contextFor(ctx), h.logger).Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

// decode parses the JSON body into v and answers 400 on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if err := sonic.Unmarshal(ctx.PostBody(), v); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return false
	}
	return true
}

// userID returns the authenticated user or answers 401.
func (h baseHandler) userID(ctx *fasthttp.RequestCtx) (string, bool) {
	userID := string(ctx.Request.Header.Peek(middleware.UserIDHeader))
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
		return "", false
	}
	return userID, true
}

// pathParam returns a router parameter or answers 400.
func (h baseHandler) pathParam(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	value, _ := ctx.UserValue(name).(string)
	if value == "" {
		h.respondInvalid(ctx, "missing "+name)
		return "", false
	}
	return value, true
}

func (h baseHandler) contextFor(ctx *fasthttp.RequestCtx) context.Context {
	reqID := string(ctx.Response.Header.Peek("X-Request-ID"))
	return appLogger.ContextWithRequestID(context.Background(), reqID)
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, string(code)
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, string(code)
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeConflict:
		return http.StatusConflict, string(code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func queryInt(ctx *fasthttp.RequestCtx, key string, fallback int) int {
	if v, err := strconv.Atoi(string(ctx.QueryArgs().Peek(key))); err == nil {
		return v
	}
	return fallback
}

func queryString(ctx *fasthttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}
