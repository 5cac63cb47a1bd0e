package session

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
	"github.com/YUVAUV7/set-card-pass/internal/config"
	"github.com/YUVAUV7/set-card-pass/internal/game"
	"github.com/YUVAUV7/set-card-pass/internal/game/room"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
)

// 机器人行动前的停顿，让真人玩家能跟上局面
const botTurnDelay = 1 * time.Second

// 终局后房间快照在 Redis 中的保留时间
const endedRoomTTL = 10 * time.Minute

// GameSession 对局会话：房间内对局状态的唯一权威
// 所有落牌操作（传牌、宣告、超时代打、机器人行动）都经由会话互斥串行执行，
// 每次提交后版本号递增并整体广播最新状态
type GameSession struct {
	room  *room.Room
	store *storage.RedisStore // 可为 nil（本地模式/测试）
	cfg   *config.Config

	g        *game.Game
	version  uint64
	strategy game.Strategy
	botDelay time.Duration

	// 超时控制
	turnTimer        *time.Timer
	offlineWaitTimer *time.Timer
	remainingTime    time.Duration
	timerStartTime   time.Time
	timerMu          sync.Mutex

	mu sync.RWMutex
}

// NewGameSession 创建对局会话，座位顺序沿用房间入座顺序
func NewGameSession(r *room.Room, store *storage.RedisStore, cfg *config.Config, rng *rand.Rand) *GameSession {
	seated := r.SeatedPlayers()
	players := make([]*game.Player, len(seated))
	for i, rp := range seated {
		players[i] = &game.Player{
			ID:         rp.ID,
			Name:       rp.Name,
			ChosenItem: rp.ChosenItem,
			IsBot:      rp.IsBot,
		}
	}

	return &GameSession{
		room:     r,
		store:    store,
		cfg:      cfg,
		g:        game.New(players, r.Category, rng),
		strategy: game.GreedyStrategy(rng),
		botDelay: botTurnDelay,
	}
}

// Start 发牌并进入对局
func (gs *GameSession) Start() error {
	gs.mu.Lock()

	if err := gs.g.DealCards(); err != nil {
		gs.mu.Unlock()
		return err
	}

	gs.g.TurnDeadline = time.Now().Add(gs.cfg.Game.TurnTimeoutDuration())
	gs.room.SetState(room.RoomStatePlaying)

	gs.commitLocked()
	gs.broadcastStateLocked()
	gs.mu.Unlock()

	gs.appendEvent(storage.EventGameStarted, map[string]any{
		"category": gs.room.Category,
	})

	log.Printf("🎮 房间 %s 开始对局，类别: %s", gs.room.Code, gs.room.Category)

	gs.startTurnTimer()
	gs.scheduleBotTurn()

	return nil
}

// HandlePassCard 处理玩家传牌
func (gs *GameSession) HandlePassCard(playerID, cardID string) error {
	gs.mu.Lock()

	seat, err := gs.seatOf(playerID)
	if err != nil {
		gs.mu.Unlock()
		return err
	}

	res, err := gs.g.PassCard(cardID, seat)
	if err != nil {
		gs.mu.Unlock()
		return err
	}

	gs.finishPassLocked(res, false)
	gs.mu.Unlock()

	gs.afterMove()
	return nil
}

// HandleDeclareSet 处理玩家宣告集齐
// 集齐可能因收到传牌被动达成，因此不要求轮到该玩家
func (gs *GameSession) HandleDeclareSet(playerID string) error {
	gs.mu.Lock()

	seat, err := gs.seatOf(playerID)
	if err != nil {
		gs.mu.Unlock()
		return err
	}

	if err := gs.g.DeclareSet(seat); err != nil {
		gs.mu.Unlock()
		return err
	}

	winner := gs.g.Players[seat]
	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgSetCalled, protocol.SetCalledPayload{
		Seat:       seat,
		PlayerName: winner.Name,
		Item:       winner.ChosenItem,
	}))
	gs.appendEvent(storage.EventSetCalled, map[string]any{
		"seat": seat,
		"item": winner.ChosenItem,
	})

	gs.endGameLocked()
	gs.commitLocked()
	gs.broadcastStateLocked()
	gs.mu.Unlock()

	return nil
}

// HandleReset 终局后重新开一局：保留玩家与已选目标，直接重新发牌
func (gs *GameSession) HandleReset(playerID string) error {
	gs.mu.Lock()

	if _, err := gs.seatOf(playerID); err != nil {
		gs.mu.Unlock()
		return err
	}

	if gs.g.Phase != game.PhaseFinished {
		gs.mu.Unlock()
		return apperrors.ErrGameNotStart
	}

	gs.g.Reset()
	if err := gs.g.DealCards(); err != nil {
		gs.mu.Unlock()
		return err
	}

	gs.g.TurnDeadline = time.Now().Add(gs.cfg.Game.TurnTimeoutDuration())
	gs.room.SetState(room.RoomStatePlaying)

	gs.commitLocked()
	gs.broadcastStateLocked()
	gs.mu.Unlock()

	gs.appendEvent(storage.EventGameStarted, map[string]any{
		"category": gs.room.Category,
		"rematch":  true,
	})

	log.Printf("🔄 房间 %s 重新开局", gs.room.Code)

	gs.startTurnTimer()
	gs.scheduleBotTurn()

	return nil
}

// IsFinished 对局是否已结束
func (gs *GameSession) IsFinished() bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.g.Phase == game.PhaseFinished
}

// Stop 停止会话的全部计时器，用于房间解散时的清理
func (gs *GameSession) Stop() {
	gs.stopTimer()
}

// finishPassLocked 传牌成功后的公共收尾，要求持有 gs.mu
func (gs *GameSession) finishPassLocked(res *game.PassResult, forced bool) {
	gs.stopTimer()

	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgCardPassed, protocol.CardPassedPayload{
		FromSeat: res.FromSeat,
		ToSeat:   res.ToSeat,
		Card: protocol.CardInfo{
			ID:       res.Card.ID,
			Item:     res.Card.Item,
			Category: res.Card.Category,
		},
		Forced: forced,
	}))
	gs.appendEvent(storage.EventCardPassed, map[string]any{
		"from_seat": res.FromSeat,
		"to_seat":   res.ToSeat,
		"card_id":   res.Card.ID,
		"forced":    forced,
	})

	if res.Finished {
		gs.endGameLocked()
	} else {
		gs.g.TurnDeadline = time.Now().Add(gs.cfg.Game.TurnTimeoutDuration())
	}

	gs.commitLocked()
	gs.broadcastStateLocked()
}

// endGameLocked 终局收尾，要求持有 gs.mu
func (gs *GameSession) endGameLocked() {
	gs.stopTimer()
	gs.room.SetState(room.RoomStateEnded)

	winner := gs.g.Players[gs.g.WinnerSeat]
	rankings := make([]protocol.PlayerInfo, len(gs.g.Rankings))
	for i, p := range gs.g.Rankings {
		rankings[i] = protocol.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			IsBot:      p.IsBot,
			ChosenItem: p.ChosenItem,
			CardCount:  len(p.Hand),
			Matching:   p.Matching,
			HasSet:     p.HasSet,
			Rank:       p.Rank,
		}
	}

	gs.room.Broadcast(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		WinnerSeat: gs.g.WinnerSeat,
		WinnerName: winner.Name,
		Rankings:   rankings,
	}))
	gs.appendEvent(storage.EventGameEnded, map[string]any{
		"winner_seat": gs.g.WinnerSeat,
	})

	if gs.store != nil {
		code := gs.room.Code
		go func() { _ = gs.store.SetRoomExpiration(context.Background(), code, endedRoomTTL) }()
	}

	log.Printf("🏆 房间 %s 对局结束，胜者: %s (座位 %d)", gs.room.Code, winner.Name, gs.g.WinnerSeat)
}

// afterMove 状态推进后的异步收尾：重启计时并驱动机器人
func (gs *GameSession) afterMove() {
	gs.mu.RLock()
	playing := gs.g.Phase == game.PhasePlaying
	gs.mu.RUnlock()

	if playing {
		gs.startTurnTimer()
		gs.scheduleBotTurn()
	}
}

// scheduleBotTurn 当前回合是机器人时，延迟执行其行动
func (gs *GameSession) scheduleBotTurn() {
	gs.mu.RLock()
	isBot := gs.g.Phase == game.PhasePlaying && gs.g.Players[gs.g.CurrentTurn].IsBot
	seat := gs.g.CurrentTurn
	gs.mu.RUnlock()

	if !isBot {
		return
	}

	time.AfterFunc(gs.botDelay, func() {
		gs.playBotTurn(seat)
	})
}

// playBotTurn 机器人走与真人完全相同的入口：先宣告，否则按策略传牌
func (gs *GameSession) playBotTurn(seat int) {
	gs.mu.Lock()

	if gs.g.Phase != game.PhasePlaying || gs.g.CurrentTurn != seat || !gs.g.Players[seat].IsBot {
		gs.mu.Unlock()
		return
	}

	bot := gs.g.Players[seat]

	if bot.HasSet {
		playerID := bot.ID
		gs.mu.Unlock()
		if err := gs.HandleDeclareSet(playerID); err != nil {
			log.Printf("⚠️ 机器人 %s 宣告失败: %v", bot.Name, err)
		}
		return
	}

	cardID := gs.strategy(gs.g, seat)
	res, err := gs.g.PassCard(cardID, seat)
	if err != nil {
		gs.mu.Unlock()
		log.Printf("⚠️ 机器人 %s 传牌失败: %v", bot.Name, err)
		return
	}

	gs.finishPassLocked(res, false)
	gs.mu.Unlock()

	gs.afterMove()
}

// seatOf 查找玩家座位，要求持有 gs.mu
func (gs *GameSession) seatOf(playerID string) (int, error) {
	for _, p := range gs.g.Players {
		if p.ID == playerID {
			return p.Seat, nil
		}
	}
	return -1, apperrors.ErrNotInRoom
}

// commitLocked 版本号递增并异步持久化，要求持有 gs.mu
func (gs *GameSession) commitLocked() {
	gs.version++

	if gs.store == nil {
		return
	}

	data := gs.room.ToRoomData()
	data.Version = gs.version
	data.Game = gs.snapshotLocked()
	version := gs.version

	go func() {
		ctx := context.Background()
		if err := gs.store.SaveRoomCAS(ctx, data); err != nil {
			if errors.Is(err, apperrors.ErrStaleWrite) {
				log.Printf("⚠️ 房间 %s 版本 %d 快照已过期，跳过写入", data.Code, version)
				return
			}
			log.Printf("⚠️ 保存房间 %s 快照失败: %v", data.Code, err)
			return
		}
		if err := gs.store.PublishRoomUpdate(ctx, data.Code, version); err != nil {
			log.Printf("⚠️ 发布房间 %s 状态变更失败: %v", data.Code, err)
		}
	}()
}

// snapshotLocked 生成对局快照，要求持有 gs.mu
func (gs *GameSession) snapshotLocked() *storage.GameSnapshot {
	snap := &storage.GameSnapshot{
		Phase:       string(gs.g.Phase),
		CurrentTurn: gs.g.CurrentTurn,
		Direction:   string(gs.g.Direction),
		WinnerSeat:  gs.g.WinnerSeat,
		Hands:       make([][]storage.CardData, len(gs.g.Players)),
	}

	if !gs.g.TurnDeadline.IsZero() {
		snap.TurnDeadline = gs.g.TurnDeadline.UnixMilli()
	}
	if gs.g.LastPassed != nil {
		snap.LastPassed = &storage.CardData{
			ID:     gs.g.LastPassed.ID,
			Item:   gs.g.LastPassed.Item,
			Holder: gs.g.LastPassed.Holder,
		}
	}

	for i, p := range gs.g.Players {
		hand := make([]storage.CardData, len(p.Hand))
		for j, c := range p.Hand {
			hand[j] = storage.CardData{ID: c.ID, Item: c.Item, Holder: c.Holder}
		}
		snap.Hands[i] = hand
	}

	return snap
}

// appendEvent 异步追加对局事件
func (gs *GameSession) appendEvent(eventType string, data map[string]any) {
	if gs.store == nil {
		return
	}
	code := gs.room.Code
	go func() {
		if err := gs.store.AppendEvent(context.Background(), code, eventType, data); err != nil {
			log.Printf("⚠️ 记录房间 %s 事件 %s 失败: %v", code, eventType, err)
		}
	}()
}
