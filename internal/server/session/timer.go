package session

import (
	"log"
	"time"

	"github.com/YUVAUV7/set-card-pass/internal/game"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
)

// 玩家离线后的代打等待时间，与下发给客户端的倒计时一致
const offlineWaitTimeout = protocol.OfflineWaitSeconds * time.Second

// --- 超时控制 ---

// startTurnTimer 按当前回合截止时间启动计时器
func (gs *GameSession) startTurnTimer() {
	gs.mu.RLock()
	if gs.g.Phase != game.PhasePlaying {
		gs.mu.RUnlock()
		return
	}
	timeout := time.Until(gs.g.TurnDeadline)
	gs.mu.RUnlock()

	if timeout <= 0 {
		timeout = gs.cfg.Game.TurnTimeoutDuration()
	}

	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
	}
	gs.timerStartTime = time.Now()
	gs.remainingTime = timeout
	gs.turnTimer = time.AfterFunc(timeout, func() {
		gs.handleTurnTimeout()
	})
}

// handleTurnTimeout 回合超时：替当前玩家随机传一张牌
func (gs *GameSession) handleTurnTimeout() {
	gs.mu.Lock()

	if gs.g.Phase != game.PhasePlaying {
		gs.mu.Unlock()
		return
	}

	seat := gs.g.CurrentTurn
	player := gs.g.Players[seat]

	res, err := gs.g.ForcePass(seat)
	if err != nil || res == nil {
		gs.g.TurnDeadline = time.Now().Add(gs.cfg.Game.TurnTimeoutDuration())
		gs.mu.Unlock()
		gs.startTurnTimer()
		return
	}

	log.Printf("⏰ 玩家 %s (座位 %d) 超时，强制传出 %s", player.Name, seat, res.Card.ID)

	gs.finishPassLocked(res, true)
	gs.mu.Unlock()

	gs.afterMove()
}

// stopTimer 停止所有计时器
func (gs *GameSession) stopTimer() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
		gs.turnTimer = nil
	}
	if gs.offlineWaitTimer != nil {
		gs.offlineWaitTimer.Stop()
		gs.offlineWaitTimer = nil
	}
}

// --- 离线处理 ---

// PlayerOffline 当前回合玩家掉线时暂停计时，等待重连
func (gs *GameSession) PlayerOffline(playerID string) {
	gs.mu.RLock()
	seat, err := gs.seatOf(playerID)
	isCurrent := err == nil && gs.g.Phase == game.PhasePlaying && gs.g.CurrentTurn == seat
	gs.mu.RUnlock()

	if !isCurrent {
		return
	}

	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()

	// 暂停计时器，记录剩余时间
	if gs.turnTimer != nil {
		gs.turnTimer.Stop()
		gs.remainingTime -= time.Since(gs.timerStartTime)
		if gs.remainingTime < 0 {
			gs.remainingTime = 0
		}
		gs.turnTimer = nil
	}

	// 离线等待超过时限后由服务器代打
	gs.offlineWaitTimer = time.AfterFunc(offlineWaitTimeout, func() {
		gs.handleTurnTimeout()
	})

	log.Printf("⏸️ 座位 %d 掉线，暂停计时等待重连 (%v)", seat, offlineWaitTimeout)
}

// PlayerOnline 玩家重连后恢复计时
func (gs *GameSession) PlayerOnline(playerID string) {
	gs.timerMu.Lock()
	if gs.offlineWaitTimer != nil {
		gs.offlineWaitTimer.Stop()
		gs.offlineWaitTimer = nil
	}
	remaining := gs.remainingTime
	gs.timerMu.Unlock()

	gs.mu.Lock()
	seat, err := gs.seatOf(playerID)
	isCurrent := err == nil && gs.g.Phase == game.PhasePlaying && gs.g.CurrentTurn == seat
	if isCurrent {
		gs.g.TurnDeadline = time.Now().Add(remaining)
	}
	gs.mu.Unlock()

	if !isCurrent {
		return
	}

	gs.startTurnTimer()
	log.Printf("▶️ 座位 %d 重连，恢复计时 (剩余 %v)", seat, remaining)
}
