package protocol

// --- 公共 DTO ---

// CardInfo 卡牌信息
type CardInfo struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Category string `json:"category"`
}

// PlayerInfo 玩家公开信息
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Seat       int    `json:"seat"`
	Ready      bool   `json:"ready"`
	IsBot      bool   `json:"is_bot,omitempty"`
	ChosenItem string `json:"chosen_item,omitempty"`
	CardCount  int    `json:"card_count"`
	Matching   int    `json:"matching"` // 同一目标的最大张数
	HasSet     bool   `json:"has_set"`
	Rank       int    `json:"rank,omitempty"` // 仅结算后有效
}

// CategoryInfo 类别信息
type CategoryInfo struct {
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Items []string `json:"items"`
}

// --- 客户端请求 Payloads ---

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`     // 重连令牌
	PlayerID string `json:"player_id"` // 玩家 ID
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
}

// ChooseItemPayload 选择收集目标请求
type ChooseItemPayload struct {
	Item string `json:"item"`
}

// StartGamePayload 开始游戏请求（仅房主）
type StartGamePayload struct {
	Category string `json:"category"`
}

// PassCardPayload 传牌请求
type PassCardPayload struct {
	CardID string `json:"card_id"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"reconnect_token"` // 重连令牌
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID   string        `json:"player_id"`
	PlayerName string        `json:"player_name"`
	RoomCode   string        `json:"room_code,omitempty"` // 如果在房间中
	RoomState  *RoomStateDTO `json:"room_state,omitempty"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// OfflineWaitSeconds 玩家掉线后服务器代打前的等待时长（秒）
// 客户端倒计时与服务器计时器都以此为准
const OfflineWaitSeconds = 30

// PlayerOfflinePayload 玩家掉线通知
type PlayerOfflinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Timeout    int    `json:"timeout"` // 等待重连超时（秒）
}

// PlayerOnlinePayload 玩家上线通知
type PlayerOnlinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string     `json:"room_code"`
	Player   PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Player   PlayerInfo   `json:"player"`
	Players  []PlayerInfo `json:"players"` // 房间内所有玩家
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PlayerReadyPayload 玩家准备通知
type PlayerReadyPayload struct {
	PlayerID string `json:"player_id"`
	Ready    bool   `json:"ready"`
}

// ItemChosenPayload 玩家选择收集目标通知
type ItemChosenPayload struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
	Item     string `json:"item"`
}

// GameStartedPayload 游戏开始通知
type GameStartedPayload struct {
	Category string `json:"category"`
}

// RoomStateDTO 房间全量状态快照
// 每次状态变更后整体推送，客户端按全量刷新处理，不做增量合并
type RoomStateDTO struct {
	RoomCode      string       `json:"room_code"`
	Phase         string       `json:"phase"` // setup/dealing/playing/finished
	Category      string       `json:"category,omitempty"`
	Players       []PlayerInfo `json:"players"`
	Hand          []CardInfo   `json:"hand"`                     // 收到该快照玩家自己的手牌
	CurrentTurn   int          `json:"current_turn"`             // 当前回合座位号
	TurnDirection string       `json:"turn_direction"`           // clockwise/counterclockwise
	LastPassed    *CardInfo    `json:"last_passed,omitempty"`    // 最近一张被传的牌
	TurnDeadline  int64        `json:"turn_deadline,omitempty"`  // 回合截止时间（Unix 毫秒）
	WinnerSeat    int          `json:"winner_seat"`              // 无胜者时为 -1
	Version       uint64       `json:"version"`                  // 状态版本号，单调递增
}

// CardPassedPayload 传牌通知
type CardPassedPayload struct {
	FromSeat int      `json:"from_seat"`
	ToSeat   int      `json:"to_seat"`
	Card     CardInfo `json:"card"`
	Forced   bool     `json:"forced"` // 是否为超时强制传牌
}

// SetCalledPayload 宣告集齐通知
type SetCalledPayload struct {
	Seat       int    `json:"seat"`
	PlayerName string `json:"player_name"`
	Item       string `json:"item"`
}

// GameOverPayload 游戏结束通知
type GameOverPayload struct {
	WinnerSeat int          `json:"winner_seat"`
	WinnerName string       `json:"winner_name"`
	Rankings   []PlayerInfo `json:"rankings"` // 按名次排序
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomCode    string `json:"room_code"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// RoomListResultPayload 房间列表结果
type RoomListResultPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// CatalogResultPayload 类别目录结果
type CatalogResultPayload struct {
	Categories []CategoryInfo `json:"categories"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
