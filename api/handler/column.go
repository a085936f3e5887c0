package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/api/transport"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/usecase"
	columnUC "github.com/fastygo/kanban/usecase/column"
	membershipUC "github.com/fastygo/kanban/usecase/membership"
)

type ColumnHandler struct {
	baseHandler
	scope boardScope
	uc    *columnUC.UseCase
}

func NewColumnHandler(uc *columnUC.UseCase, members *membershipUC.UseCase, resolver *usecase.Resolver, adapter *httpcontext.Adapter, logger *zap.Logger) *ColumnHandler {
	return &ColumnHandler{
		baseHandler: newBaseHandler(adapter, logger),
		scope:       boardScope{members: members, resolver: resolver},
		uc:          uc,
	}
}

// @Summary List columns
// @Tags columns
// @Router /api/v1/boards/{boardId}/columns [get]
func (h *ColumnHandler) List(ctx *fasthttp.RequestCtx) {
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
	columns, err := h.uc.List(stdCtx, m)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, columns, len(columns))
}

// @Summary Create column
// @Tags columns
// @Router /api/v1/boards/{boardId}/columns [post]
func (h *ColumnHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ColumnCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	m, err := h.scope.forBoard(stdCtx, pathParam(ctx, "boardId"), userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	column, err := h.uc.Create(stdCtx, m, req.Title)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, column)
}

// @Summary Rename or reorder column
// @Tags columns
// @Router /api/v1/columns/{id} [patch]
func (h *ColumnHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ColumnUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	m, err := h.scope.forColumn(stdCtx, id, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	column, err := h.uc.Update(stdCtx, m, id, columnUC.UpdateInput{
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, column)
}

// @Summary Delete column
// @Tags columns
// @Router /api/v1/columns/{id} [delete]
func (h *ColumnHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	m, err := h.scope.forColumn(stdCtx, id, userID)
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
