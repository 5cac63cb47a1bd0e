package room

import (
	"sync"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/config"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

const (
	roomCodeLength = 6                                  // 房间号长度
	roomCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 房间号字符集，去掉易混淆的 0/O/1/I
)

// RoomPlayer 房间中的一个座位
type RoomPlayer struct {
	Client     types.ClientInterface // 机器人或掉线玩家为 nil
	ID         string
	Name       string
	Seat       int    // 座位号，从 0 开始
	Ready      bool   // 是否准备
	ChosenItem string // 选定的收集目标
	IsBot      bool   // 是否为机器人座位
}

// Room 游戏房间
type Room struct {
	Code        string                 // 房间号
	State       RoomState              // 房间状态
	Category    string                 // 本局卡牌类别
	HostID      string                 // 房主玩家 ID
	MaxPlayers  int                    // 最大座位数
	Players     map[string]*RoomPlayer // 玩家列表
	PlayerOrder []string               // 玩家顺序（按座位）
	CreatedAt   time.Time              // 创建时间

	mu sync.RWMutex
}

// Manager 房间管理器
type Manager struct {
	redisStore *storage.RedisStore // 可为 nil（本地模式/测试）
	cfg        *config.Config
	rooms      map[string]*Room
	mu         sync.RWMutex
}

// NewManager 创建房间管理器
func NewManager(rs *storage.RedisStore, cfg *config.Config) *Manager {
	m := &Manager{
		redisStore: rs,
		cfg:        cfg,
		rooms:      make(map[string]*Room),
	}

	// 启动房间清理协程
	go m.cleanupLoop()

	return m
}

// Broadcast 广播消息给房间内所有在线玩家
func (r *Room) Broadcast(msg *protocol.Message) {
	for _, client := range r.onlineClients("") {
		client.SendMessage(msg)
	}
}

// BroadcastExcept 广播消息给除指定玩家外的所有在线玩家
func (r *Room) BroadcastExcept(excludeID string, msg *protocol.Message) {
	for _, client := range r.onlineClients(excludeID) {
		client.SendMessage(msg)
	}
}

// onlineClients 在读锁下取在线客户端快照，发送不占用房间锁
func (r *Room) onlineClients(excludeID string) []types.ClientInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]types.ClientInterface, 0, len(r.Players))
	for id, player := range r.Players {
		if id != excludeID && player.Client != nil {
			clients = append(clients, player.Client)
		}
	}
	return clients
}

// checkAllReady 检查是否所有玩家都准备好（机器人始终视为已准备）
func (r *Room) checkAllReady(minPlayers int) bool {
	if len(r.Players) < minPlayers {
		return false
	}
	for _, player := range r.Players {
		if !player.IsBot && !player.Ready {
			return false
		}
	}
	return true
}

// checkAllItemsChosen 检查是否所有座位都已选定收集目标
func (r *Room) checkAllItemsChosen() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, player := range r.Players {
		if player.ChosenItem == "" {
			return false
		}
	}
	return true
}

// itemTaken 目标是否已被占用
func (r *Room) itemTaken(item string) bool {
	for _, player := range r.Players {
		if player.ChosenItem == item {
			return true
		}
	}
	return false
}

// GetPlayerInfo 获取玩家信息
func (r *Room) GetPlayerInfo(playerID string) protocol.PlayerInfo {
	player := r.Players[playerID]
	return protocol.PlayerInfo{
		ID:         player.ID,
		Name:       player.Name,
		Seat:       player.Seat,
		Ready:      player.Ready || player.IsBot,
		IsBot:      player.IsBot,
		ChosenItem: player.ChosenItem,
	}
}

// GetAllPlayersInfo 按座位顺序获取所有玩家信息
func (r *Room) GetAllPlayersInfo() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.Players))
	for _, id := range r.PlayerOrder {
		infos = append(infos, r.GetPlayerInfo(id))
	}
	return infos
}

// PlayerCount 当前座位数（含机器人）
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Players)
}

// GetPlayer 按 ID 查找座位
func (r *Room) GetPlayer(playerID string) (*RoomPlayer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.Players[playerID]
	return p, ok
}

// SeatedPlayers 按座位顺序返回所有玩家
func (r *Room) SeatedPlayers() []*RoomPlayer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RoomPlayer, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		out = append(out, r.Players[id])
	}
	return out
}

// GetState 读取房间状态
func (r *Room) GetState() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// SetState 更新房间状态
func (r *Room) SetState(state RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.State = state
}

// addPlayer 分配下一个空座位，调用方需持有锁
func (r *Room) addPlayer(p *RoomPlayer) {
	p.Seat = len(r.PlayerOrder)
	r.Players[p.ID] = p
	r.PlayerOrder = append(r.PlayerOrder, p.ID)
}

// removePlayer 移除玩家并压缩座位号，调用方需持有锁
func (r *Room) removePlayer(playerID string) {
	delete(r.Players, playerID)
	for i, id := range r.PlayerOrder {
		if id == playerID {
			r.PlayerOrder = append(r.PlayerOrder[:i], r.PlayerOrder[i+1:]...)
			break
		}
	}
	for i, id := range r.PlayerOrder {
		r.Players[id].Seat = i
	}
}
