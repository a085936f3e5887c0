package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/api/transport"
	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/usecase"
	boardUC "github.com/fastygo/kanban/usecase/board"
	membershipUC "github.com/fastygo/kanban/usecase/membership"
)

type BoardHandler struct {
	baseHandler
	scope   boardScope
	boards  *boardUC.UseCase
	members *membershipUC.UseCase
}

func NewBoardHandler(boards *boardUC.UseCase, members *membershipUC.UseCase, resolver *usecase.Resolver, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		scope:       boardScope{members: members, resolver: resolver},
		boards:      boards,
		members:     members,
	}
}

// @Summary List boards of the current user
// @Tags boards
// @Router /api/v1/boards [get]
func (h *BoardHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	boards, err := h.boards.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, boards, len(boards))
}

// @Summary Create board
// @Tags boards
// @Router /api/v1/boards [post]
func (h *BoardHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.BoardRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, owner, err := h.boards.Create(stdCtx, userID, req.Title)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, map[string]interface{}{
		"board":      board,
		"membership": owner,
	})
}

// @Summary Get board with columns, tasks and members
// @Tags boards
// @Router /api/v1/boards/{boardId} [get]
func (h *BoardHandler) Get(ctx *fasthttp.RequestCtx) {
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
	view, err := h.boards.Get(stdCtx, m)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Delete board
// @Tags boards
// @Router /api/v1/boards/{boardId} [delete]
func (h *BoardHandler) Delete(ctx *fasthttp.RequestCtx) {
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
	if err := h.boards.Delete(stdCtx, m); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List board members
// @Tags members
// @Router /api/v1/boards/{boardId}/members [get]
func (h *BoardHandler) ListMembers(ctx *fasthttp.RequestCtx) {
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
	members, err := h.members.ListMembers(stdCtx, m)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, members, len(members))
}

// @Summary Invite a user to the board
// @Tags members
// @Router /api/v1/boards/{boardId}/members [post]
func (h *BoardHandler) AddMember(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.MemberRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Email == "" {
		h.respondInvalid(ctx, "email is required")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	m, err := h.scope.forBoard(stdCtx, pathParam(ctx, "boardId"), userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	member, err := h.members.AddMember(stdCtx, m, req.Email, role)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, member)
}
