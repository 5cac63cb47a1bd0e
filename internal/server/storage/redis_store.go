package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
)

const (
	// Redis key 前缀
	roomKeyPrefix    = "room:"
	sessionKeyPrefix = "session:"
	eventsKeyPrefix  = "events:"
	updatesChannel   = "room-updates:"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour

	// 每个房间最多保留的事件条数
	maxEventsPerRoom = 256

	// 版本冲突时的最大重试次数
	casMaxRetries = 3
)

// 房间事件类型
const (
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventGameStarted  = "game_started"
	EventCardPassed   = "card_passed"
	EventSetCalled    = "set_called"
	EventGameEnded    = "game_ended"
)

// RoomData 房间数据（用于 Redis 序列化）
type RoomData struct {
	Code        string        `json:"code"`
	State       int           `json:"state"`
	Category    string        `json:"category,omitempty"`
	HostID      string        `json:"host_id"`
	Players     []PlayerData  `json:"players"`
	PlayerOrder []string      `json:"player_order"`
	CreatedAt   int64         `json:"created_at"`
	Version     uint64        `json:"version"` // 单调递增，乐观并发控制
	Game        *GameSnapshot `json:"game,omitempty"`
}

// PlayerData 玩家数据
type PlayerData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Seat       int    `json:"seat"`
	Ready      bool   `json:"ready"`
	IsBot      bool   `json:"is_bot,omitempty"`
	ChosenItem string `json:"chosen_item,omitempty"`
	Matching   int    `json:"matching,omitempty"`
	HasSet     bool   `json:"has_set,omitempty"`
	Rank       int    `json:"rank,omitempty"`
}

// GameSnapshot 对局快照（用于恢复与观战）
type GameSnapshot struct {
	Phase        string       `json:"phase"`
	CurrentTurn  int          `json:"current_turn"`
	Direction    string       `json:"direction"`
	TurnDeadline int64        `json:"turn_deadline,omitempty"` // Unix 毫秒
	WinnerSeat   int          `json:"winner_seat"`
	LastPassed   *CardData    `json:"last_passed,omitempty"`
	Hands        [][]CardData `json:"hands"` // 按座位号索引
}

// CardData 卡牌数据
type CardData struct {
	ID     string `json:"id"`
	Item   string `json:"item"`
	Holder int    `json:"holder"`
}

// RoomEvent 房间事件（追加写入事件流）
type RoomEvent struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"` // Unix 毫秒
	Data      map[string]any `json:"data,omitempty"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 房间存储 ---

// SaveRoom 保存房间到 Redis（无版本检查，用于大厅阶段）
func (rs *RedisStore) SaveRoom(ctx context.Context, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + data.Code
	return rs.client.Set(ctx, key, jsonData, roomExpiration).Err()
}

// SaveRoomCAS 带版本检查保存房间。
// 只有当 Redis 中的版本号小于 data.Version 时写入才会生效，
// 否则返回 apperrors.ErrStaleWrite，调用方需重新加载状态后重试。
func (rs *RedisStore) SaveRoomCAS(ctx context.Context, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + data.Code

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var existing RoomData
			if err := json.Unmarshal(current, &existing); err == nil && existing.Version >= data.Version {
				return apperrors.ErrStaleWrite
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, jsonData, roomExpiration)
			return nil
		})
		return err
	}

	// WATCH 冲突（并发写同一 key）时重试，版本过期则直接失败
	for i := 0; i < casMaxRetries; i++ {
		err := rs.client.Watch(ctx, txn, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			time.Sleep(time.Duration(1<<i) * 10 * time.Millisecond)
			continue
		}
		return err
	}
	return apperrors.ErrStaleWrite
}

// LoadRoom 从 Redis 加载房间（仅返回数据，需要外部重建）
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	key := roomKeyPrefix + code
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 房间不存在
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	return &roomData, nil
}

// DeleteRoom 从 Redis 删除房间及其事件流
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	return rs.client.Del(ctx, roomKeyPrefix+code, eventsKeyPrefix+code).Err()
}

// GetAllRoomCodes 获取所有房间号
func (rs *RedisStore) GetAllRoomCodes(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(keys))
	for i, key := range keys {
		codes[i] = key[len(roomKeyPrefix):]
	}
	return codes, nil
}

// --- 事件流 ---

// AppendEvent 追加房间事件，超出上限时淘汰最旧的事件
func (rs *RedisStore) AppendEvent(ctx context.Context, code, eventType string, data map[string]any) error {
	event := RoomEvent{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	key := eventsKeyPrefix + code
	pipe := rs.client.Pipeline()
	pipe.RPush(ctx, key, jsonData)
	pipe.LTrim(ctx, key, -maxEventsPerRoom, -1)
	pipe.Expire(ctx, key, roomExpiration)
	_, err = pipe.Exec(ctx)
	return err
}

// LoadEvents 按时间顺序读取房间事件
func (rs *RedisStore) LoadEvents(ctx context.Context, code string) ([]RoomEvent, error) {
	key := eventsKeyPrefix + code
	raw, err := rs.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]RoomEvent, 0, len(raw))
	for _, item := range raw {
		var event RoomEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("反序列化事件失败: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// --- 状态变更通知 ---

// PublishRoomUpdate 发布房间状态变更通知（携带最新版本号）
func (rs *RedisStore) PublishRoomUpdate(ctx context.Context, code string, version uint64) error {
	return rs.client.Publish(ctx, updatesChannel+code, version).Err()
}

// SubscribeRoomUpdates 订阅房间状态变更通知
func (rs *RedisStore) SubscribeRoomUpdates(ctx context.Context, code string) *redis.PubSub {
	return rs.client.Subscribe(ctx, updatesChannel+code)
}

// --- 会话存储 ---

// PlayerSessionData 玩家会话数据（用于 Redis 序列化）
type PlayerSessionData struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"token"`
	RoomCode       string `json:"room_code"`
	IsOnline       bool   `json:"is_online"`
	DisconnectedAt int64  `json:"disconnected_at,omitempty"`
}

// SaveSession 保存会话到 Redis
func (rs *RedisStore) SaveSession(ctx context.Context, session *PlayerSessionData) error {
	data := map[string]any{
		"player_id":   session.PlayerID,
		"player_name": session.PlayerName,
		"token":       session.ReconnectToken,
		"room_code":   session.RoomCode,
		"is_online":   session.IsOnline,
	}

	if session.DisconnectedAt != 0 {
		data["disconnected_at"] = session.DisconnectedAt
	}

	key := sessionKeyPrefix + session.PlayerID
	return rs.client.HSet(ctx, key, data).Err()
}

// LoadSession 从 Redis 加载会话
func (rs *RedisStore) LoadSession(ctx context.Context, playerID string) (*PlayerSessionData, error) {
	key := sessionKeyPrefix + playerID
	data, err := rs.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	session := &PlayerSessionData{
		PlayerID:       data["player_id"],
		PlayerName:     data["player_name"],
		ReconnectToken: data["token"],
		RoomCode:       data["room_code"],
		IsOnline:       data["is_online"] == "1",
	}
	if raw, ok := data["disconnected_at"]; ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			session.DisconnectedAt = ms
		}
	}

	return session, nil
}

// DeleteSession 删除会话
func (rs *RedisStore) DeleteSession(ctx context.Context, playerID string) error {
	key := sessionKeyPrefix + playerID
	return rs.client.Del(ctx, key).Err()
}

// --- 辅助方法 ---

// SetRoomExpiration 设置房间过期时间
func (rs *RedisStore) SetRoomExpiration(ctx context.Context, code string, expiration time.Duration) error {
	key := roomKeyPrefix + code
	return rs.client.Expire(ctx, key, expiration).Err()
}
