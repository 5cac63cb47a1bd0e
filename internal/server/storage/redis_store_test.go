package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)
	return store, mr
}

func TestRedisStore_SaveLoadDeleteRoom(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	roomData := &RoomData{
		Code:     "ABC234",
		State:    1,
		Category: "animals",
		HostID:   "p1",
		Players: []PlayerData{
			{ID: "p1", Name: "Alice", Seat: 0, Ready: true, ChosenItem: "Tiger"},
		},
		PlayerOrder: []string{"p1"},
		CreatedAt:   time.Now().Unix(),
		Version:     1,
	}

	// Save
	err := store.SaveRoom(ctx, roomData)
	assert.NoError(t, err)

	// Load
	loadedData, err := store.LoadRoom(ctx, roomData.Code)
	assert.NoError(t, err)
	assert.NotNil(t, loadedData)
	assert.Equal(t, roomData.Code, loadedData.Code)
	assert.Equal(t, roomData.Category, loadedData.Category)
	assert.Equal(t, "Tiger", loadedData.Players[0].ChosenItem)

	// Delete
	err = store.DeleteRoom(ctx, roomData.Code)
	assert.NoError(t, err)

	// Verify Delete
	loadedData, err = store.LoadRoom(ctx, roomData.Code)
	assert.NoError(t, err)
	assert.Nil(t, loadedData)
}

func TestRedisStore_SaveRoomCAS(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	data := &RoomData{Code: "CAS123", Version: 1}
	require.NoError(t, store.SaveRoomCAS(ctx, data))

	// Higher version wins
	data.Version = 2
	require.NoError(t, store.SaveRoomCAS(ctx, data))

	// Stale version is rejected
	stale := &RoomData{Code: "CAS123", Version: 2}
	err := store.SaveRoomCAS(ctx, stale)
	assert.ErrorIs(t, err, apperrors.ErrStaleWrite)

	stale.Version = 1
	err = store.SaveRoomCAS(ctx, stale)
	assert.ErrorIs(t, err, apperrors.ErrStaleWrite)

	// Stored data keeps the winning version
	loaded, err := store.LoadRoom(ctx, "CAS123")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), loaded.Version)
}

func TestRedisStore_SaveRoomCAS_GameSnapshot(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	data := &RoomData{
		Code:    "SNAP01",
		Version: 1,
		Game: &GameSnapshot{
			Phase:       "playing",
			CurrentTurn: 2,
			Direction:   "clockwise",
			WinnerSeat:  -1,
			LastPassed:  &CardData{ID: "Tiger-1", Item: "Tiger", Holder: 2},
			Hands: [][]CardData{
				{{ID: "Blue-1", Item: "Blue", Holder: 0}},
			},
		},
	}
	require.NoError(t, store.SaveRoomCAS(ctx, data))

	loaded, err := store.LoadRoom(ctx, "SNAP01")
	require.NoError(t, err)
	require.NotNil(t, loaded.Game)
	assert.Equal(t, "playing", loaded.Game.Phase)
	assert.Equal(t, 2, loaded.Game.CurrentTurn)
	assert.Equal(t, "Tiger-1", loaded.Game.LastPassed.ID)
	assert.Equal(t, -1, loaded.Game.WinnerSeat)
}

func TestRedisStore_Events(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	err := store.AppendEvent(ctx, "EVT123", EventPlayerJoined, map[string]any{"player_id": "p1"})
	assert.NoError(t, err)
	err = store.AppendEvent(ctx, "EVT123", EventCardPassed, map[string]any{"from_seat": float64(0), "to_seat": float64(1)})
	assert.NoError(t, err)

	events, err := store.LoadEvents(ctx, "EVT123")
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, EventPlayerJoined, events[0].Type)
	assert.Equal(t, EventCardPassed, events[1].Type)
	assert.Equal(t, "p1", events[0].Data["player_id"])
	assert.NotZero(t, events[0].Timestamp)
}

func TestRedisStore_EventsCapped(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	for i := 0; i < maxEventsPerRoom+10; i++ {
		err := store.AppendEvent(ctx, "CAP123", EventCardPassed, nil)
		assert.NoError(t, err)
	}

	events, err := store.LoadEvents(ctx, "CAP123")
	assert.NoError(t, err)
	assert.Len(t, events, maxEventsPerRoom)
}

func TestRedisStore_Sessions(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	session := &PlayerSessionData{
		PlayerID:       "p1",
		PlayerName:     "Alice",
		ReconnectToken: "token123",
		RoomCode:       "ABC234",
		IsOnline:       true,
	}

	err := store.SaveSession(ctx, session)
	assert.NoError(t, err)

	loaded, err := store.LoadSession(ctx, "p1")
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, "Alice", loaded.PlayerName)
	assert.Equal(t, "token123", loaded.ReconnectToken)
	assert.Equal(t, "ABC234", loaded.RoomCode)
	assert.True(t, loaded.IsOnline)
	assert.Zero(t, loaded.DisconnectedAt)

	// The disconnect timestamp round-trips, so the reconnect window
	// survives a server restart instead of restarting from load time.
	session.IsOnline = false
	session.DisconnectedAt = time.Now().UnixMilli()
	err = store.SaveSession(ctx, session)
	assert.NoError(t, err)

	loaded, err = store.LoadSession(ctx, "p1")
	assert.NoError(t, err)
	assert.False(t, loaded.IsOnline)
	assert.Equal(t, session.DisconnectedAt, loaded.DisconnectedAt)

	// Missing session returns nil without error
	missing, err := store.LoadSession(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	err = store.DeleteSession(ctx, "p1")
	assert.NoError(t, err)

	loaded, err = store.LoadSession(ctx, "p1")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_PublishRoomUpdate(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	sub := store.SubscribeRoomUpdates(ctx, "PUB123")
	defer sub.Close()

	// Wait for subscription to be established
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	err = store.PublishRoomUpdate(ctx, "PUB123", 7)
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "7", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive room update")
	}
}
