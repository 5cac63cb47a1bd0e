package room

import (
	"context"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

// botNames 机器人座位的候选昵称
var botNames = []string{"小智", "小淘", "小胖", "小灵"}

// CreateRoom 创建房间，创建者自动入座并成为房主
func (m *Manager) CreateRoom(client types.ClientInterface) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 生成唯一房间号
	code := m.generateRoomCode()

	room := &Room{
		Code:        code,
		State:       RoomStateWaiting,
		HostID:      client.GetID(),
		MaxPlayers:  m.cfg.Game.MaxPlayers,
		Players:     make(map[string]*RoomPlayer),
		PlayerOrder: make([]string, 0, m.cfg.Game.MaxPlayers),
		CreatedAt:   time.Now(),
	}

	// 添加创建者
	room.addPlayer(&RoomPlayer{
		Client: client,
		ID:     client.GetID(),
		Name:   client.GetName(),
	})
	client.SetRoom(code)

	m.rooms[code] = room

	m.saveRoom(room)
	m.appendEvent(code, storage.EventPlayerJoined, map[string]any{
		"player_id":   client.GetID(),
		"player_name": client.GetName(),
	})

	log.Printf("🏠 房间 %s 已创建，房主 %s", code, client.GetName())

	return room, nil
}

// JoinRoom 加入房间。重复加入同一房间视为幂等成功。
func (m *Manager) JoinRoom(client types.ClientInterface, code string) (*Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	m.mu.Lock()
	room, exists := m.rooms[code]
	m.mu.Unlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()

	if _, ok := room.Players[client.GetID()]; ok {
		room.mu.Unlock()
		return room, nil
	}

	if room.State != RoomStateWaiting {
		room.mu.Unlock()
		return nil, apperrors.ErrGameStarted
	}

	if len(room.Players) >= room.MaxPlayers {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomFull
	}

	player := &RoomPlayer{
		Client: client,
		ID:     client.GetID(),
		Name:   client.GetName(),
	}
	room.addPlayer(player)
	client.SetRoom(code)
	room.mu.Unlock()

	log.Printf("👤 玩家 %s 加入房间 %s (座位 %d)", client.GetName(), code, player.Seat)

	// 通知房间内其他玩家
	room.BroadcastExcept(client.GetID(), codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: room.GetPlayerInfo(client.GetID()),
	}))

	m.saveRoom(room)
	m.appendEvent(code, storage.EventPlayerJoined, map[string]any{
		"player_id":   player.ID,
		"player_name": player.Name,
	})

	return room, nil
}

// AddBot 向等待中的房间添加一个机器人座位
func (m *Manager) AddBot(client types.ClientInterface) (*Room, *RoomPlayer, error) {
	room := m.GetRoom(client.GetRoom())
	if room == nil {
		return nil, nil, apperrors.ErrNotInRoom
	}

	room.mu.Lock()

	if room.State != RoomStateWaiting {
		room.mu.Unlock()
		return nil, nil, apperrors.ErrGameStarted
	}

	if len(room.Players) >= room.MaxPlayers {
		room.mu.Unlock()
		return nil, nil, apperrors.ErrRoomFull
	}

	bot := &RoomPlayer{
		ID:    uuid.NewString(),
		Name:  botNames[len(room.Players)%len(botNames)],
		IsBot: true,
		Ready: true,
	}
	room.addPlayer(bot)
	room.mu.Unlock()

	log.Printf("🤖 机器人 %s 加入房间 %s (座位 %d)", bot.Name, room.Code, bot.Seat)

	room.Broadcast(codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: room.GetPlayerInfo(bot.ID),
	}))

	m.saveRoom(room)

	return room, bot, nil
}

// LeaveRoom 离开房间
func (m *Manager) LeaveRoom(client types.ClientInterface) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}

	m.mu.Lock()
	room, exists := m.rooms[roomCode]
	if !exists {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	room.mu.Lock()

	player, exists := room.Players[client.GetID()]
	if !exists {
		room.mu.Unlock()
		return
	}

	room.removePlayer(player.ID)
	client.SetRoom("")

	// 只剩机器人的房间直接解散
	humansLeft := 0
	for _, p := range room.Players {
		if !p.IsBot {
			humansLeft++
		}
	}

	// 房主离开则移交给最早入座的真人玩家
	if humansLeft > 0 && room.HostID == player.ID {
		for _, id := range room.PlayerOrder {
			if !room.Players[id].IsBot {
				room.HostID = id
				break
			}
		}
	}
	room.mu.Unlock()

	log.Printf("👋 玩家 %s 离开房间 %s (座位 %d)", player.Name, roomCode, player.Seat)

	if humansLeft == 0 {
		m.mu.Lock()
		delete(m.rooms, roomCode)
		m.mu.Unlock()
		if m.redisStore != nil {
			go func() { _ = m.redisStore.DeleteRoom(context.Background(), roomCode) }()
		}
		log.Printf("🏠 房间 %s 已解散", roomCode)
		return
	}

	// 通知其他玩家
	room.Broadcast(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
	}))

	m.saveRoom(room)
	m.appendEvent(roomCode, storage.EventPlayerLeft, map[string]any{
		"player_id":   player.ID,
		"player_name": player.Name,
	})
}

// SetPlayerReady 设置玩家准备状态
func (m *Manager) SetPlayerReady(client types.ClientInterface, ready bool) error {
	room := m.GetRoom(client.GetRoom())
	if room == nil {
		return apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	player, exists := room.Players[client.GetID()]
	if !exists {
		room.mu.Unlock()
		return apperrors.ErrNotInRoom
	}
	player.Ready = ready
	room.mu.Unlock()

	// 广播准备状态
	room.Broadcast(codec.MustNewMessage(protocol.MsgPlayerReady, protocol.PlayerReadyPayload{
		PlayerID: client.GetID(),
		Ready:    ready,
	}))

	m.saveRoom(room)

	return nil
}

// CanStart 房间是否满足开局条件（人数够且全部准备）
func (m *Manager) CanStart(room *Room) bool {
	room.mu.RLock()
	defer room.mu.RUnlock()
	return room.State == RoomStateWaiting && room.checkAllReady(m.cfg.Game.MinPlayers)
}

// BeginSelecting 锁定类别并进入目标选择阶段
func (m *Manager) BeginSelecting(room *Room, category string) {
	room.mu.Lock()
	room.State = RoomStateSelecting
	room.Category = category
	room.mu.Unlock()
	m.saveRoom(room)
}

// ChooseItem 玩家在选择阶段锁定自己的收集目标
func (m *Manager) ChooseItem(client types.ClientInterface, item string) (*Room, error) {
	room := m.GetRoom(client.GetRoom())
	if room == nil {
		return nil, apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	player, exists := room.Players[client.GetID()]
	if !exists {
		room.mu.Unlock()
		return nil, apperrors.ErrNotInRoom
	}
	if room.State != RoomStateSelecting {
		room.mu.Unlock()
		return nil, apperrors.ErrGameNotStart
	}
	if room.itemTaken(item) {
		room.mu.Unlock()
		return nil, apperrors.ErrInvalidSetup
	}
	player.ChosenItem = item
	seat := player.Seat
	room.mu.Unlock()

	room.Broadcast(codec.MustNewMessage(protocol.MsgItemChosen, protocol.ItemChosenPayload{
		PlayerID: player.ID,
		Seat:     seat,
		Item:     item,
	}))

	m.saveRoom(room)

	return room, nil
}

// AssignBotItems 为机器人座位随机分配未被占用的收集目标
func (m *Manager) AssignBotItems(room *Room, items []string) {
	shuffled := make([]string, len(items))
	copy(shuffled, items)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	type botChoice struct {
		playerID string
		seat     int
		item     string
	}
	var chosen []botChoice

	room.mu.Lock()
	idx := 0
	for _, id := range room.PlayerOrder {
		p := room.Players[id]
		if !p.IsBot || p.ChosenItem != "" {
			continue
		}
		for idx < len(shuffled) && room.itemTaken(shuffled[idx]) {
			idx++
		}
		if idx >= len(shuffled) {
			break
		}
		p.ChosenItem = shuffled[idx]
		chosen = append(chosen, botChoice{p.ID, p.Seat, p.ChosenItem})
		idx++
	}
	room.mu.Unlock()

	for _, c := range chosen {
		room.Broadcast(codec.MustNewMessage(protocol.MsgItemChosen, protocol.ItemChosenPayload{
			PlayerID: c.playerID,
			Seat:     c.seat,
			Item:     c.item,
		}))
	}

	m.saveRoom(room)
}

// AllItemsChosen 是否所有座位都已选定收集目标
func (m *Manager) AllItemsChosen(room *Room) bool {
	room.mu.RLock()
	defer room.mu.RUnlock()
	return room.State == RoomStateSelecting && room.checkAllItemsChosen()
}

// GetRoom 获取房间，房间号不区分大小写
func (m *Manager) GetRoom(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[strings.ToUpper(strings.TrimSpace(code))]
}

// GetRoomList 获取可加入的房间列表
func (m *Manager) GetRoomList() []protocol.RoomListItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rooms []protocol.RoomListItem
	for code, room := range m.rooms {
		room.mu.RLock()
		// 只返回等待中且未满的房间
		if room.State == RoomStateWaiting && len(room.Players) < room.MaxPlayers {
			rooms = append(rooms, protocol.RoomListItem{
				RoomCode:    code,
				PlayerCount: len(room.Players),
				MaxPlayers:  room.MaxPlayers,
			})
		}
		room.mu.RUnlock()
	}
	return rooms
}

// GetRoomByPlayerID 通过玩家 ID 获取房间
func (m *Manager) GetRoomByPlayerID(playerID string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, room := range m.rooms {
		room.mu.RLock()
		_, exists := room.Players[playerID]
		room.mu.RUnlock()
		if exists {
			return room
		}
	}
	return nil
}

// GetActiveGamesCount 获取进行中的对局数量
func (m *Manager) GetActiveGamesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, room := range m.rooms {
		room.mu.RLock()
		switch room.State {
		case RoomStateSelecting, RoomStatePlaying:
			count++
		}
		room.mu.RUnlock()
	}
	return count
}

// saveRoom 异步保存房间快照
func (m *Manager) saveRoom(room *Room) {
	if m.redisStore == nil {
		return
	}
	data := room.ToRoomData()
	go func() { _ = m.redisStore.SaveRoom(context.Background(), data) }()
}

// appendEvent 异步追加房间事件
func (m *Manager) appendEvent(code, eventType string, data map[string]any) {
	if m.redisStore == nil {
		return
	}
	go func() {
		if err := m.redisStore.AppendEvent(context.Background(), code, eventType, data); err != nil {
			log.Printf("⚠️ 记录房间 %s 事件 %s 失败: %v", code, eventType, err)
		}
	}()
}

// RestoreRooms 服务器重启后从 Redis 快照重建未开局的房间
// 进行中或已结束的对局无法续打，对应快照直接删除
func (m *Manager) RestoreRooms(ctx context.Context) (int, error) {
	if m.redisStore == nil {
		return 0, nil
	}

	codes, err := m.redisStore.GetAllRoomCodes(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, code := range codes {
		data, err := m.redisStore.LoadRoom(ctx, code)
		if err != nil || data == nil {
			continue
		}

		state := RoomState(data.State)
		if state != RoomStateWaiting && state != RoomStateSelecting {
			_ = m.redisStore.DeleteRoom(ctx, code)
			continue
		}

		room := RoomFromData(data, m.cfg.Game.MaxPlayers)
		m.mu.Lock()
		if _, exists := m.rooms[room.Code]; !exists {
			m.rooms[room.Code] = room
			restored++
		}
		m.mu.Unlock()
	}

	if restored > 0 {
		log.Printf("💾 从 Redis 恢复了 %d 个等待中的房间", restored)
	}
	return restored, nil
}
