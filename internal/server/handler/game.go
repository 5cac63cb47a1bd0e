package handler

import (
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/session"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

// sessionFor 解析客户端所在房间的对局会话
func (h *Handler) sessionFor(client types.ClientInterface) *session.GameSession {
	r := h.roomManager.GetRoom(client.GetRoom())
	if r == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return nil
	}

	gs := h.GetGameSession(r.Code)
	if gs == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeGameNotStart))
		return nil
	}
	return gs
}

// handlePassCard 处理传牌
func (h *Handler) handlePassCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PassCardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	gs := h.sessionFor(client)
	if gs == nil {
		return
	}

	if err := gs.HandlePassCard(client.GetID(), payload.CardID); err != nil {
		h.sendError(client, err)
	}
}

// handleDeclareSet 处理宣告集齐
func (h *Handler) handleDeclareSet(client types.ClientInterface) {
	gs := h.sessionFor(client)
	if gs == nil {
		return
	}

	if err := gs.HandleDeclareSet(client.GetID()); err != nil {
		h.sendError(client, err)
	}
}

// handleResetGame 处理终局后重开一局
func (h *Handler) handleResetGame(client types.ClientInterface) {
	gs := h.sessionFor(client)
	if gs == nil {
		return
	}

	if err := gs.HandleReset(client.GetID()); err != nil {
		h.sendError(client, err)
	}
}
