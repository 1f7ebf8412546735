package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/pkg/httpcontext"
	notificationUC "github.com/fastygo/tracker/usecase/notification"
)

type NotificationHandler struct {
	baseHandler
	uc *notificationUC.UseCase
}

func NewNotificationHandler(uc *notificationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List own notifications, newest first
// @Tags notifications
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	limit := queryInt(ctx, "limit", 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.ListNotifications(stdCtx, userID, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, items, transport.PageMeta{Limit: limit, Count: len(items)})
}

// @Summary Unread notification count
// @Tags notifications
// @Router /api/v1/notifications/unread [get]
func (h *NotificationHandler) Unread(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	count, err := h.uc.UnreadCount(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"unread": count})
}

// @Summary Mark notification as read
// @Tags notifications
// @Router /api/v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.MarkRead(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
