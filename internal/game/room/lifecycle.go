package room

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/types"
)

// NotifyPlayerOffline 通知房间内其他玩家某个玩家掉线
func (m *Manager) NotifyPlayerOffline(client types.ClientInterface) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		return
	}

	m.mu.RLock()
	room, exists := m.rooms[roomCode]
	m.mu.RUnlock()
	if !exists {
		return
	}

	room.mu.Lock()

	// 标记当前玩家为离线
	if player, exists := room.Players[client.GetID()]; exists {
		player.Client = nil
	}

	// 检查是否还有在线的真人玩家
	allOffline := true
	for _, player := range room.Players {
		if player.Client != nil {
			allOffline = false
			player.Client.SendMessage(codec.MustNewMessage(protocol.MsgPlayerOffline, protocol.PlayerOfflinePayload{
				PlayerID:   client.GetID(),
				PlayerName: client.GetName(),
				Timeout:    protocol.OfflineWaitSeconds,
			}))
		}
	}

	// 所有真人都离线则清理房间
	if allOffline {
		log.Printf("🧹 房间 %s 所有玩家已断开连接，清理房间", roomCode)
		room.State = RoomStateEnded
		room.mu.Unlock()

		m.mu.Lock()
		delete(m.rooms, roomCode)
		m.mu.Unlock()
		return
	}

	// 游戏进行中时由 GameSession 代打该座位（外部调用者处理）
	room.mu.Unlock()

	log.Printf("📴 玩家 %s 在房间 %s 中掉线", client.GetName(), roomCode)
}

// ReconnectPlayer 玩家重连到房间
// newClient 的 ID 必须已恢复为掉线前的玩家 ID
func (m *Manager) ReconnectPlayer(newClient types.ClientInterface, roomCode string) error {
	if roomCode == "" {
		return nil // 不在房间中，无需重连
	}

	m.mu.RLock()
	room, exists := m.rooms[roomCode]
	m.mu.RUnlock()
	if !exists {
		return apperrors.ErrRoomNotFound
	}

	room.mu.Lock()

	player, exists := room.Players[newClient.GetID()]
	if !exists {
		room.mu.Unlock()
		return apperrors.ErrNotInRoom
	}

	// 更新客户端引用
	player.Client = newClient
	newClient.SetRoom(roomCode)

	// 通知其他玩家该玩家已上线
	for id, p := range room.Players {
		if id != newClient.GetID() && p.Client != nil {
			p.Client.SendMessage(codec.MustNewMessage(protocol.MsgPlayerOnline, protocol.PlayerOnlinePayload{
				PlayerID:   newClient.GetID(),
				PlayerName: newClient.GetName(),
			}))
		}
	}

	room.mu.Unlock()

	log.Printf("📶 玩家 %s 重连到房间 %s", newClient.GetName(), roomCode)

	return nil
}

// generateRoomCode 生成房间号
func (m *Manager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := m.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理超时房间
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

// cleanup 清理超时房间
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	timeout := m.cfg.Game.RoomTimeoutDuration()

	for code, room := range m.rooms {
		room.mu.RLock()
		// 只清理等待状态且超时的房间
		if room.State == RoomStateWaiting && now.Sub(room.CreatedAt) > timeout {
			room.mu.RUnlock()
			// 通知所有玩家房间已关闭
			room.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
			for _, p := range room.Players {
				if p.Client != nil {
					p.Client.SetRoom("")
				}
			}
			delete(m.rooms, code)
			log.Printf("🏠 房间 %s 超时已清理", code)
		} else {
			room.mu.RUnlock()
		}
	}
}
