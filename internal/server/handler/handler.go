package handler

import (
	"log"
	"sync"

	"github.com/YUVAUV7/set-card-pass/internal/config"
	"github.com/YUVAUV7/set-card-pass/internal/game/room"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/session"
	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server         types.ServerInterface
	Config         *config.Config
	RoomManager    *room.Manager
	RedisStore     *storage.RedisStore
	SessionManager *session.SessionManager
}

// Handler 消息处理器
type Handler struct {
	server         types.ServerInterface
	config         *config.Config
	roomManager    *room.Manager
	redisStore     *storage.RedisStore
	sessionManager *session.SessionManager
	handlers       map[protocol.MessageType]handlerFunc
	games          map[string]*session.GameSession
	gamesMu        sync.RWMutex
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:         deps.Server,
		config:         deps.Config,
		roomManager:    deps.RoomManager,
		redisStore:     deps.RedisStore,
		sessionManager: deps.SessionManager,
		games:          make(map[string]*session.GameSession),
	}
	h.initHandlers()
	return h
}

// GetGameSession 获取房间的游戏会话
func (h *Handler) GetGameSession(roomCode string) *session.GameSession {
	h.gamesMu.RLock()
	defer h.gamesMu.RUnlock()
	return h.games[roomCode]
}

// SetGameSession 设置房间的游戏会话
func (h *Handler) SetGameSession(roomCode string, gs *session.GameSession) {
	h.gamesMu.Lock()
	defer h.gamesMu.Unlock()
	if gs == nil {
		delete(h.games, roomCode)
	} else {
		h.games[roomCode] = gs
	}
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:      h.handlePing,
		protocol.MsgReconnect: h.handleReconnect,

		// 房间操作
		protocol.MsgCreateRoom:  func(c types.ClientInterface, _ *protocol.Message) { h.handleCreateRoom(c) },
		protocol.MsgJoinRoom:    h.handleJoinRoom,
		protocol.MsgLeaveRoom:   func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgReady:       func(c types.ClientInterface, _ *protocol.Message) { h.handleReady(c, true) },
		protocol.MsgCancelReady: func(c types.ClientInterface, _ *protocol.Message) { h.handleReady(c, false) },
		protocol.MsgAddBot:      func(c types.ClientInterface, _ *protocol.Message) { h.handleAddBot(c) },

		// 游戏操作
		protocol.MsgChooseItem: h.handleChooseItem,
		protocol.MsgStartGame:  h.handleStartGame,
		protocol.MsgPassCard:   h.handlePassCard,
		protocol.MsgDeclareSet: func(c types.ClientInterface, _ *protocol.Message) { h.handleDeclareSet(c) },
		protocol.MsgResetGame:  func(c types.ClientInterface, _ *protocol.Message) { h.handleResetGame(c) },

		// 信息查询
		protocol.MsgGetRoomList: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },
		protocol.MsgGetCatalog:  func(c types.ClientInterface, _ *protocol.Message) { h.handleGetCatalog(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// NotifyPlayerOffline 客户端断开时的善后：暂停其回合计时并标记房间内离线
func (h *Handler) NotifyPlayerOffline(client types.ClientInterface) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}

	if gs := h.GetGameSession(roomCode); gs != nil {
		gs.PlayerOffline(client.GetID())
	}

	h.roomManager.NotifyPlayerOffline(client)

	// 房间因全员离线被清理时，一并回收对局会话
	if h.roomManager.GetRoom(roomCode) == nil {
		if gs := h.GetGameSession(roomCode); gs != nil {
			gs.Stop()
			h.SetGameSession(roomCode, nil)
		}
	}
}
