package game

import (
	"math/rand/v2"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
	"github.com/YUVAUV7/set-card-pass/internal/game/card"
	"github.com/YUVAUV7/set-card-pass/internal/game/turn"
)

// Phase 游戏阶段
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseDealing  Phase = "dealing"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// NoWinner 尚无胜者
const NoWinner = -1

// Game 定义游戏状态机
// 本身不做并发控制：本地模式单线程驱动，联机模式由会话权威串行调用
type Game struct {
	Phase        Phase
	Category     string
	Players      []*Player // 按座位顺序，整局固定
	Deck         card.Deck // 仅发牌前非空
	CurrentTurn  int       // 当前回合座位号
	Direction    turn.Direction
	LastPassed   *card.Card // 最近一张被传的牌
	WinnerSeat   int        // 胜者座位号，NoWinner 表示无
	Rankings     []*Player  // 终局名次，仅 finished 阶段非空
	StartedAt    time.Time
	TurnDeadline time.Time // 回合截止时间，playing 之外恒为零值（仅联机模式使用）

	rng *rand.Rand
}

// New 创建一局新游戏，玩家座位号按传入顺序设置
func New(players []*Player, category string, rng *rand.Rand) *Game {
	for i, p := range players {
		p.Seat = i
	}
	return &Game{
		Phase:       PhaseSetup,
		Category:    category,
		Players:     players,
		CurrentTurn: 0,
		Direction:   turn.Clockwise,
		WinnerSeat:  NoWinner,
		rng:         rng,
	}
}

// DealCards 发牌：setup → dealing → playing
// 要求每个玩家都已选择目标且互不相同；轮流发牌（每轮每人一张，共四轮），发完牌堆清空
// 发牌后立即评估所有手牌；若有人开局即集齐，游戏仍进入 playing，
// 由该玩家主动 DeclareSet 结束（首轮发牌直接获胜只能通过宣告达成）
func (g *Game) DealCards() error {
	if g.Phase != PhaseSetup {
		return apperrors.ErrGameStarted
	}

	items := make([]string, len(g.Players))
	for i, p := range g.Players {
		items[i] = p.ChosenItem
	}

	deck, err := card.BuildDeck(items, g.Category, g.rng)
	if err != nil {
		return err
	}

	g.Phase = PhaseDealing
	g.Deck = deck

	for range card.CopiesPerItem {
		for _, p := range g.Players {
			c := g.Deck[0]
			g.Deck = g.Deck[1:]
			c.Holder = p.Seat
			p.Hand = append(p.Hand, c)
		}
	}

	g.evaluateAll()

	g.Phase = PhasePlaying
	g.StartedAt = time.Now()
	g.CurrentTurn = 0

	return nil
}

// PassResult 一次传牌的结果
type PassResult struct {
	Card     card.Card
	FromSeat int
	ToSeat   int
	Finished bool
}

// PassCard 当前回合玩家把一张牌传给下家
// 校验失败（非当前回合、未持有该牌）时不产生任何状态变更
func (g *Game) PassCard(cardID string, fromSeat int) (*PassResult, error) {
	if g.Phase != PhasePlaying {
		return nil, apperrors.ErrGameNotStart
	}
	if fromSeat != g.CurrentTurn {
		return nil, apperrors.ErrNotYourTurn
	}

	from := g.Players[fromSeat]
	idx, held := from.HoldsCard(cardID)
	if !held {
		return nil, apperrors.ErrCardNotHeld
	}

	toSeat := turn.NextSeat(g.Direction, fromSeat, len(g.Players))
	to := g.Players[toSeat]

	c := from.Hand[idx]
	from.Hand = append(from.Hand[:idx], from.Hand[idx+1:]...)
	c.Holder = toSeat
	to.Hand = append(to.Hand, c)

	g.LastPassed = &c

	// 传牌后重新评估所有手牌，而不只是涉及的两家
	g.evaluateAll()

	result := &PassResult{Card: c, FromSeat: fromSeat, ToSeat: toSeat}

	// 若有人集齐则终局；多人同时集齐时，从收牌座位起按座位顺序取第一个
	if winner, found := g.findSetHolder(toSeat); found {
		g.finish(winner)
		result.Finished = true
		return result, nil
	}

	g.CurrentTurn = toSeat
	g.TurnDeadline = time.Time{}

	return result, nil
}

// DeclareSet 玩家宣告集齐
// 集齐可能因收到传牌被动达成，因此不限当前回合，任何座位都可宣告
func (g *Game) DeclareSet(seat int) error {
	if g.Phase != PhasePlaying {
		return apperrors.ErrGameNotStart
	}
	if seat < 0 || seat >= len(g.Players) {
		return apperrors.ErrNotInRoom
	}
	if !g.Players[seat].HasSet {
		return apperrors.ErrNoValidSet
	}

	g.finish(seat)
	return nil
}

// ForcePass 超时强制传牌：从当前手牌中随机选一张按 PassCard 处理
// 手牌为空时为防御性空操作
func (g *Game) ForcePass(seat int) (*PassResult, error) {
	if g.Phase != PhasePlaying {
		return nil, apperrors.ErrGameNotStart
	}
	if seat != g.CurrentTurn {
		return nil, apperrors.ErrNotYourTurn
	}

	hand := g.Players[seat].Hand
	if len(hand) == 0 {
		return nil, nil
	}

	c := hand[g.rng.IntN(len(hand))]
	return g.PassCard(c.ID, seat)
}

// EndByTimer 本地模式的计时器终局：以当前形势最好的玩家为胜者立即结算
func (g *Game) EndByTimer() {
	if g.Phase != PhasePlaying {
		return
	}

	g.evaluateAll()
	best := rankPlayers(g.Players)[0]
	g.finish(best.Seat)
}

// Reset 重置游戏：清空手牌、牌堆、胜者与名次，回到 setup
// 玩家与其先前选择的目标保留
func (g *Game) Reset() {
	for _, p := range g.Players {
		p.Hand = nil
		p.Matching = 0
		p.HasSet = false
		p.Rank = 0
	}
	g.Phase = PhaseSetup
	g.Deck = nil
	g.CurrentTurn = 0
	g.LastPassed = nil
	g.WinnerSeat = NoWinner
	g.Rankings = nil
	g.StartedAt = time.Time{}
	g.TurnDeadline = time.Time{}
}

// CardCount 牌堆与所有手牌的总牌数（守恒检查用）
func (g *Game) CardCount() int {
	total := len(g.Deck)
	for _, p := range g.Players {
		total += len(p.Hand)
	}
	return total
}

// evaluateAll 重新计算所有玩家的派生字段
func (g *Game) evaluateAll() {
	for _, p := range g.Players {
		p.evaluate()
	}
}

// findSetHolder 从 start 座位起按座位顺序找第一个集齐的玩家
func (g *Game) findSetHolder(start int) (int, bool) {
	n := len(g.Players)
	for i := range n {
		seat := (start + i) % n
		if g.Players[seat].HasSet {
			return seat, true
		}
	}
	return NoWinner, false
}

// finish 终局：记录胜者并结算名次
func (g *Game) finish(winnerSeat int) {
	g.Phase = PhaseFinished
	g.WinnerSeat = winnerSeat
	g.TurnDeadline = time.Time{}
	g.Rankings = rankPlayers(g.Players)
	for i, p := range g.Rankings {
		p.Rank = i + 1
	}
}
