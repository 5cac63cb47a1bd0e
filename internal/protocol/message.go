package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "reconnect" // 断线重连
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgCreateRoom  MessageType = "create_room"  // 创建房间
	MsgJoinRoom    MessageType = "join_room"    // 加入房间
	MsgLeaveRoom   MessageType = "leave_room"   // 离开房间
	MsgReady       MessageType = "ready"        // 准备就绪
	MsgCancelReady MessageType = "cancel_ready" // 取消准备
	MsgAddBot      MessageType = "add_bot"      // 添加机器人玩家

	// 游戏操作
	MsgChooseItem MessageType = "choose_item" // 选择收集目标
	MsgStartGame  MessageType = "start_game"  // 开始游戏（房主发牌）
	MsgPassCard   MessageType = "pass_card"   // 传牌
	MsgDeclareSet MessageType = "declare_set" // 宣告集齐
	MsgResetGame  MessageType = "reset_game"  // 重置游戏

	// 信息查询
	MsgGetRoomList MessageType = "get_room_list" // 获取房间列表
	MsgGetCatalog  MessageType = "get_catalog"   // 获取类别目录
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "connected"      // 连接成功
	MsgReconnected   MessageType = "reconnected"    // 重连成功
	MsgPong          MessageType = "pong"           // 心跳 pong
	MsgPlayerOffline MessageType = "player_offline" // 玩家掉线通知
	MsgPlayerOnline  MessageType = "player_online"  // 玩家上线通知

	// 房间相关
	MsgRoomCreated  MessageType = "room_created"  // 房间创建成功
	MsgRoomJoined   MessageType = "room_joined"   // 加入房间成功
	MsgPlayerJoined MessageType = "player_joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player_left"   // 玩家离开
	MsgPlayerReady  MessageType = "player_ready"  // 玩家准备
	MsgItemChosen   MessageType = "item_chosen"   // 玩家选择了收集目标

	// 游戏流程
	MsgGameStarted MessageType = "game_started" // 游戏开始（已发牌）
	MsgRoomState   MessageType = "room_state"   // 房间全量状态快照
	MsgCardPassed  MessageType = "card_passed"  // 有人传牌
	MsgSetCalled   MessageType = "set_called"   // 有人宣告集齐
	MsgGameOver    MessageType = "game_over"    // 游戏结束

	// 信息查询
	MsgRoomListResult MessageType = "room_list_result" // 房间列表结果
	MsgCatalogResult  MessageType = "catalog_result"   // 类别目录结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
