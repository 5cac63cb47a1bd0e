//go:build !production

package room

// NewMockRoom 创建测试用的 Room
func NewMockRoom(code string) *Room {
	return &Room{
		Code:       code,
		MaxPlayers: 4,
		Players:    make(map[string]*RoomPlayer),
	}
}

// AddRoomForTest 添加房间用于测试
func (m *Manager) AddRoomForTest(room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.Code] = room
}
