package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/repository"
	taskUC "github.com/fastygo/tracker/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	filter := repository.TaskFilter{
		ProjectID:  queryString(ctx, "project_id"),
		AssigneeID: queryString(ctx, "assignee_id"),
		Status:     queryString(ctx, "status"),
		Limit:      queryInt(ctx, "limit", 50),
		Offset:     queryInt(ctx, "offset", 0),
	}
	if queryString(ctx, "mine") == "true" {
		userID, ok := h.userID(ctx)
		if !ok {
			return
		}
		filter.AssigneeID = userID
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, tasks, transport.PageMeta{Limit: filter.Limit, Offset: filter.Offset, Count: len(tasks)})
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, taskUC.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.UpdateTaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	in := taskUC.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		in.Status = &status
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, id, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Update task progress
// @Tags tasks
// @Router /api/v1/tasks/{id}/progress [put]
func (h *TaskHandler) UpdateProgress(ctx *fasthttp.RequestCtx) {
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

	updated, err := h.uc.UpdateProgress(stdCtx, id, *req.Progress)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Assign a user
// @Tags tasks
// @Router /api/v1/tasks/{id}/assignees/{userId} [post]
func (h *TaskHandler) AssignUser(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := h.pathParam(ctx, "userId")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AssignUser(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Unassign a user
// @Tags tasks
// @Router /api/v1/tasks/{id}/assignees/{userId} [delete]
func (h *TaskHandler) UnassignUser(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := h.pathParam(ctx, "userId")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.UnassignUser(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Active status policy
// @Tags settings
// @Router /api/v1/settings/status-policy [get]
func (h *TaskHandler) GetStatusPolicy(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.StatusPolicyResponse{Policy: h.uc.StatusPolicy()})
}

// @Summary Switch status policy
// @Tags settings
// @Router /api/v1/settings/status-policy [put]
func (h *TaskHandler) SetStatusPolicy(ctx *fasthttp.RequestCtx) {
	var req transport.StatusPolicyRequest
	if !h.decode(ctx, &req) {
		return
	}
	name, err := h.uc.SetStatusPolicy(req.Policy)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.StatusPolicyResponse{Policy: name})
}
