package game

import (
	"github.com/YUVAUV7/set-card-pass/internal/game/card"
)

// Player 游戏中的玩家
// Seat 为固定座位号（0..N-1），整局不变；Matching/HasSet 为每次状态变更后的派生字段
type Player struct {
	ID         string
	Name       string
	Seat       int
	ChosenItem string // 选定的收集目标
	Hand       []card.Card
	Matching   int  // 同一目标的最大张数
	HasSet     bool // Matching >= 4
	Rank       int  // 终局名次，0 表示未结算
	IsBot      bool
}

// HoldsCard 检查玩家是否持有指定的牌，返回其在手牌中的下标
func (p *Player) HoldsCard(cardID string) (int, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i, true
		}
	}
	return -1, false
}

// evaluate 重新计算派生字段
func (p *Player) evaluate() {
	p.Matching, p.HasSet = card.Evaluate(p.Hand)
}
