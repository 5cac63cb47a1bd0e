package room

import (
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
)

// ToRoomData 将 Room 转换为可序列化的 RoomData
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := &storage.RoomData{
		Code:        r.Code,
		State:       int(r.State),
		Category:    r.Category,
		HostID:      r.HostID,
		Players:     make([]storage.PlayerData, 0, len(r.Players)),
		PlayerOrder: r.PlayerOrder,
		CreatedAt:   r.CreatedAt.Unix(),
	}

	for _, id := range r.PlayerOrder {
		player := r.Players[id]
		data.Players = append(data.Players, storage.PlayerData{
			ID:         player.ID,
			Name:       player.Name,
			Seat:       player.Seat,
			Ready:      player.Ready || player.IsBot,
			IsBot:      player.IsBot,
			ChosenItem: player.ChosenItem,
		})
	}

	return data
}

// RoomFromData 从快照重建 Room，客户端连接字段留空等待重连
func RoomFromData(data *storage.RoomData, maxPlayers int) *Room {
	r := &Room{
		Code:        data.Code,
		State:       RoomState(data.State),
		Category:    data.Category,
		HostID:      data.HostID,
		MaxPlayers:  maxPlayers,
		Players:     make(map[string]*RoomPlayer, len(data.Players)),
		PlayerOrder: data.PlayerOrder,
		CreatedAt:   time.Unix(data.CreatedAt, 0),
	}

	for _, pd := range data.Players {
		r.Players[pd.ID] = &RoomPlayer{
			ID:         pd.ID,
			Name:       pd.Name,
			Seat:       pd.Seat,
			Ready:      pd.Ready,
			IsBot:      pd.IsBot,
			ChosenItem: pd.ChosenItem,
		}
	}

	return r
}
