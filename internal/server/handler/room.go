package handler

import (
	"errors"
	"log"
	"math/rand/v2"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
	"github.com/YUVAUV7/set-card-pass/internal/game/catalog"
	"github.com/YUVAUV7/set-card-pass/internal/game/room"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/session"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface) {
	// 如果已在房间中，先离开
	if client.GetRoom() != "" {
		h.handleLeaveRoom(client)
	}

	newRoom, err := h.roomManager.CreateRoom(client)
	if err != nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: newRoom.Code,
		Player:   newRoom.GetPlayerInfo(client.GetID()),
	}))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 如果已在房间中，先离开
	if client.GetRoom() != "" {
		h.handleLeaveRoom(client)
	}

	joined, err := h.roomManager.JoinRoom(client, payload.RoomCode)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode: joined.Code,
		Player:   joined.GetPlayerInfo(client.GetID()),
		Players:  joined.GetAllPlayersInfo(),
	}))
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	roomCode := client.GetRoom()
	h.roomManager.LeaveRoom(client)

	// 房间解散后回收对局会话
	if roomCode != "" && h.roomManager.GetRoom(roomCode) == nil {
		if gs := h.GetGameSession(roomCode); gs != nil {
			gs.Stop()
			h.SetGameSession(roomCode, nil)
		}
	}
}

// handleReady 处理准备
func (h *Handler) handleReady(client types.ClientInterface, ready bool) {
	if err := h.roomManager.SetPlayerReady(client, ready); err != nil {
		h.sendError(client, err)
	}
}

// handleAddBot 处理添加机器人（仅房主）
func (h *Handler) handleAddBot(client types.ClientInterface) {
	r := h.roomManager.GetRoom(client.GetRoom())
	if r == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if r.HostID != client.GetID() {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "只有房主可以添加机器人"))
		return
	}

	if _, _, err := h.roomManager.AddBot(client); err != nil {
		h.sendError(client, err)
	}
}

// handleStartGame 房主锁定类别并进入目标选择阶段
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r := h.roomManager.GetRoom(client.GetRoom())
	if r == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if r.HostID != client.GetID() {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "只有房主可以开始游戏"))
		return
	}

	if !h.roomManager.CanStart(r) {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "人数不足或还有玩家未准备"))
		return
	}

	cat, ok := catalog.Find(payload.Category)
	if !ok {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidSetup))
		return
	}

	h.roomManager.BeginSelecting(r, cat.Name)

	r.Broadcast(codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		Category: cat.Name,
	}))

	// 机器人座位自动分配目标，真人玩家自行选择
	h.roomManager.AssignBotItems(r, cat.Items)

	if h.roomManager.AllItemsChosen(r) {
		h.startGameSession(r)
	}
}

// handleChooseItem 玩家选择收集目标，全部选定后立即开局
func (h *Handler) handleChooseItem(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChooseItemPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r := h.roomManager.GetRoom(client.GetRoom())
	if r == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	// 目标必须属于已锁定的类别
	if cat, ok := catalog.Find(r.Category); ok && !cat.HasItem(payload.Item) {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidSetup))
		return
	}

	chosen, err := h.roomManager.ChooseItem(client, payload.Item)
	if err != nil {
		h.sendError(client, err)
		return
	}

	if h.roomManager.AllItemsChosen(chosen) {
		h.startGameSession(chosen)
	}
}

// handleGetRoomList 处理获取房间列表
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListResultPayload{
		Rooms: h.roomManager.GetRoomList(),
	}))
}

// handleGetCatalog 处理获取类别目录
func (h *Handler) handleGetCatalog(client types.ClientInterface) {
	cats := catalog.Categories()
	infos := make([]protocol.CategoryInfo, len(cats))
	for i, c := range cats {
		infos[i] = protocol.CategoryInfo{
			Name:  c.Name,
			Icon:  c.Icon,
			Items: c.Items,
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgCatalogResult, protocol.CatalogResultPayload{
		Categories: infos,
	}))
}

// startGameSession 创建对局会话并发牌
func (h *Handler) startGameSession(r *room.Room) {
	gs := session.NewGameSession(r, h.redisStore, h.config, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	h.SetGameSession(r.Code, gs)

	if err := gs.Start(); err != nil {
		log.Printf("⚠️ 房间 %s 开局失败: %v", r.Code, err)
		h.SetGameSession(r.Code, nil)
	}
}

// sendError 将错误转换为协议错误消息
func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
		return
	}
	client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}
