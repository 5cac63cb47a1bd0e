package handler

import (
	"log"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/session"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

// identityAdopter 支持重连时恢复身份的客户端实现
type identityAdopter interface {
	AdoptIdentity(id, name string)
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleReconnect 处理断线重连
func (h *Handler) handleReconnect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 验证重连令牌
	if !h.sessionManager.CanReconnect(payload.Token, payload.PlayerID) {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "重连令牌无效或已过期"))
		return
	}

	// 获取旧会话
	sess := h.sessionManager.GetSession(payload.PlayerID)
	if sess == nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "会话不存在"))
		return
	}

	oldID := client.GetID()

	// 恢复掉线前的身份，随后从临时 ID 注销、用原 ID 注册
	if adopter, ok := client.(identityAdopter); ok {
		adopter.AdoptIdentity(sess.PlayerID, sess.PlayerName)
	}
	h.server.UnregisterClient(oldID)
	h.server.RegisterClient(sess.PlayerID, client)
	h.sessionManager.DeleteSession(oldID)

	// 标记会话上线
	h.sessionManager.SetOnline(sess.PlayerID)

	// 构建重连响应
	reconnectPayload := protocol.ReconnectedPayload{
		PlayerID:   sess.PlayerID,
		PlayerName: sess.PlayerName,
	}

	// 如果在房间中，尝试恢复房间信息
	if sess.RoomCode != "" {
		h.tryRestoreRoomState(client, sess, &reconnectPayload)
	}

	// 发送重连成功消息
	client.SendMessage(codec.MustNewMessage(protocol.MsgReconnected, reconnectPayload))

	log.Printf("🔄 玩家 %s (%s) 重连成功", sess.PlayerName, sess.PlayerID)
}

// tryRestoreRoomState 尝试恢复房间状态
func (h *Handler) tryRestoreRoomState(client types.ClientInterface, sess *session.PlayerSession, payload *protocol.ReconnectedPayload) {
	if h.roomManager.GetRoom(sess.RoomCode) == nil {
		return
	}

	// 重连到房间
	if err := h.roomManager.ReconnectPlayer(client, sess.RoomCode); err != nil {
		log.Printf("重连到房间失败: %v", err)
		return
	}

	payload.RoomCode = sess.RoomCode

	// 如果游戏正在进行，恢复计时并下发最新对局快照
	if gs := h.GetGameSession(sess.RoomCode); gs != nil {
		gs.PlayerOnline(sess.PlayerID)
		payload.RoomState = gs.BuildRoomStateDTO(sess.PlayerID)
	}
}
