package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting   RoomState = iota // 等待玩家加入/准备
	RoomStateSelecting                  // 类别已定，等待玩家选择收集目标
	RoomStatePlaying                    // 对局进行中
	RoomStateEnded                      // 对局已结束
)
