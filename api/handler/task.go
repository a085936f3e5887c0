package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/api/transport"
	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/usecase"
	membershipUC "github.com/fastygo/kanban/usecase/membership"
	taskUC "github.com/fastygo/kanban/usecase/task"
)

type TaskHandler struct {
	baseHandler
	scope boardScope
	uc    *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, members *membershipUC.UseCase, resolver *usecase.Resolver, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		scope:       boardScope{members: members, resolver: resolver},
		uc:          uc,
	}
}

// @Summary List tasks of a board
// @Tags tasks
// @Router /api/v1/boards/{boardId}/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	m, err := h.scope.forBoard(stdCtx, pathParam(ctx, "boardId"), userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	tasks, err := h.uc.List(stdCtx, m)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, tasks, len(tasks))
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.ColumnID == "" || req.BoardID == "" {
		h.respondInvalid(ctx, "column_id and board_id are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	m, err := h.scope.forBoard(stdCtx, req.BoardID, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := h.uc.Create(stdCtx, m, taskUC.CreateInput{
		ColumnID:    req.ColumnID,
		BoardID:     req.BoardID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// @Summary Edit, move or change the status of a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}
	in := taskUC.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		ColumnID:    req.ColumnID,
		Position:    req.Position,
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			h.respondInvalid(ctx, err.Error())
			return
		}
		in.Status = &status
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	m, err := h.scope.forTask(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	task, err := h.uc.Update(stdCtx, m, id, in)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	m, err := h.scope.forTask(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if err := h.uc.Delete(stdCtx, m, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
