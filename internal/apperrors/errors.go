package apperrors

import (
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomFull     = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotInRoom    = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrGameStarted  = &GameError{Code: protocol.ErrCodeGameStarted, Message: "游戏已开始"}
	ErrGameNotStart = &GameError{Code: protocol.ErrCodeGameNotStart, Message: "游戏尚未开始"}
	ErrNotYourTurn  = &GameError{Code: protocol.ErrCodeNotYourTurn, Message: "还没轮到您"}
	ErrCardNotHeld  = &GameError{Code: protocol.ErrCodeCardNotHeld, Message: "您没有这张牌"}
	ErrNoValidSet   = &GameError{Code: protocol.ErrCodeNoValidSet, Message: "您还没有集齐四张"}
	ErrInvalidSetup = &GameError{Code: protocol.ErrCodeInvalidSetup, Message: "目标选择不完整或有重复"}
	ErrStaleWrite   = &GameError{Code: protocol.ErrCodeStaleWrite, Message: "状态已被更新，请重试"}
)
