package handler

import (
	"io"
	"net/http"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tracker/api/transport"
	taskUC "github.com/fastygo/tracker/usecase/task"
)

const maxUploadSize = 10 << 20

// @Summary List subtasks
// @Tags subtasks
// @Router /api/v1/tasks/{id}/subtasks [get]
func (h *TaskHandler) ListSubtasks(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtasks, err := h.uc.ListSubtasks(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, subtasks)
}

// @Summary Add subtask
// @Tags subtasks
// @Router /api/v1/tasks/{id}/subtasks [post]
func (h *TaskHandler) AddSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.SubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtask, err := h.uc.AddSubtask(stdCtx, id, req.Title)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, subtask)
}

// @Summary Update subtask progress
// @Tags subtasks
// @Router /api/v1/subtasks/{id}/progress [put]
func (h *TaskHandler) UpdateSubtaskProgress(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.ProgressRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Progress == nil {
		h.respondInvalid(ctx, "progress is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtask, err := h.uc.UpdateSubtaskProgress(stdCtx, id, *req.Progress)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, subtask)
}

// @Summary Complete subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id}/complete [post]
func (h *TaskHandler) CompleteSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtask, err := h.uc.CompleteSubtask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, subtask)
}

// @Summary Delete subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id} [delete]
func (h *TaskHandler) DeleteSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteSubtask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List comments
// @Tags comments
// @Router /api/v1/tasks/{id}/comments [get]
func (h *TaskHandler) ListComments(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comments, err := h.uc.ListComments(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, comments)
}

// @Summary Add comment
// @Tags comments
// @Router /api/v1/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.CommentRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comment, err := h.uc.AddComment(stdCtx, id, userID, req.Content)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, comment)
}

// @Summary List attachments
// @Tags files
// @Router /api/v1/tasks/{id}/files [get]
func (h *TaskHandler) ListAttachments(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	files, err := h.uc.ListAttachments(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, files)
}

// @Summary Upload attachment (multipart field "file")
// @Tags files
// @Router /api/v1/tasks/{id}/files [post]
func (h *TaskHandler) AttachFile(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		h.respondInvalid(ctx, "multipart field \"file\" is required")
		return
	}
	if header.Size > maxUploadSize {
		h.respondInvalid(ctx, "file too large")
		return
	}
	f, err := header.Open()
	if err != nil {
		h.respondInvalid(ctx, "unreadable upload")
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	f.Close()
	if err != nil {
		h.respondInvalid(ctx, "unreadable upload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	attachment, err := h.uc.AttachFile(stdCtx, taskUC.AttachFileInput{
		TaskID:      id,
		UserID:      userID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, attachment)
}
