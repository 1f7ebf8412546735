package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/api/transport"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/repository"
	projectUC "github.com/fastygo/tracker/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List projects
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) ListProjects(ctx *fasthttp.RequestCtx) {
	filter := repository.ProjectFilter{
		CreatorID: queryString(ctx, "creator_id"),
		MemberID:  queryString(ctx, "member_id"),
		Limit:     queryInt(ctx, "limit", 50),
		Offset:    queryInt(ctx, "offset", 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.ListProjects(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, projects, transport.PageMeta{Limit: filter.Limit, Offset: filter.Offset, Count: len(projects)})
}

// @Summary Get project
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.GetProject(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	var req transport.CreateProjectRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.CreateProject(stdCtx, projectUC.CreateProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		CreatorID:    userID,
		MemberEmails: req.MemberEmails,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, project)
}

// @Summary Update project
// @Tags projects
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.UpdateProjectRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.UpdateProject(stdCtx, id, projectUC.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Delete project
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProject(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Invite members by email
// @Tags projects
// @Router /api/v1/projects/{id}/invitations [post]
func (h *ProjectHandler) InviteMembers(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.InviteRequest
	if !h.decode(ctx, &req) {
		return
	}
	if len(req.Emails) == 0 {
		h.respondInvalid(ctx, "emails are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invited, err := h.uc.InviteMembers(stdCtx, id, req.Emails)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.InviteResponse{Invited: invited})
}

// @Summary Remove member
// @Tags projects
// @Router /api/v1/projects/{id}/members/{userId} [delete]
func (h *ProjectHandler) RemoveMember(ctx *fasthttp.RequestCtx) {
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

	project, err := h.uc.RemoveMember(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}
