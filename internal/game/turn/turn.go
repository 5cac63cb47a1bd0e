package turn

// Direction 轮转方向
type Direction string

const (
	Clockwise        Direction = "clockwise"
	Counterclockwise Direction = "counterclockwise"
)

// NextSeat 按方向计算下一个座位号
// 座位号为 0..playerCount-1，永远不会跳过任何座位
func NextSeat(dir Direction, current, playerCount int) int {
	if dir == Counterclockwise {
		return (current - 1 + playerCount) % playerCount
	}
	return (current + 1) % playerCount
}
