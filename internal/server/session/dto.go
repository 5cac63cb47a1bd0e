package session

import (
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
)

// BuildRoomStateDTO 构建发给指定玩家的全量状态快照
// 手牌只包含该玩家自己的，其他玩家只暴露张数与匹配进度
func (gs *GameSession) BuildRoomStateDTO(viewerID string) *protocol.RoomStateDTO {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.buildRoomStateDTOLocked(viewerID)
}

// buildRoomStateDTOLocked 要求持有 gs.mu
func (gs *GameSession) buildRoomStateDTOLocked(viewerID string) *protocol.RoomStateDTO {
	dto := &protocol.RoomStateDTO{
		RoomCode:      gs.room.Code,
		Phase:         string(gs.g.Phase),
		Category:      gs.g.Category,
		Players:       make([]protocol.PlayerInfo, len(gs.g.Players)),
		CurrentTurn:   gs.g.CurrentTurn,
		TurnDirection: string(gs.g.Direction),
		WinnerSeat:    gs.g.WinnerSeat,
		Version:       gs.version,
	}

	if !gs.g.TurnDeadline.IsZero() {
		dto.TurnDeadline = gs.g.TurnDeadline.UnixMilli()
	}
	if gs.g.LastPassed != nil {
		dto.LastPassed = &protocol.CardInfo{
			ID:       gs.g.LastPassed.ID,
			Item:     gs.g.LastPassed.Item,
			Category: gs.g.LastPassed.Category,
		}
	}

	for i, p := range gs.g.Players {
		dto.Players[i] = protocol.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Ready:      true,
			IsBot:      p.IsBot,
			ChosenItem: p.ChosenItem,
			CardCount:  len(p.Hand),
			Matching:   p.Matching,
			HasSet:     p.HasSet,
			Rank:       p.Rank,
		}

		if p.ID == viewerID {
			hand := make([]protocol.CardInfo, len(p.Hand))
			for j, c := range p.Hand {
				hand[j] = protocol.CardInfo{ID: c.ID, Item: c.Item, Category: c.Category}
			}
			dto.Hand = hand
		}
	}

	return dto
}

// broadcastStateLocked 向每个在线玩家推送各自视角的状态快照，要求持有 gs.mu
func (gs *GameSession) broadcastStateLocked() {
	for _, rp := range gs.room.SeatedPlayers() {
		if rp.IsBot || rp.Client == nil {
			continue
		}
		rp.Client.SendMessage(codec.MustNewMessage(protocol.MsgRoomState, gs.buildRoomStateDTOLocked(rp.ID)))
	}
}
