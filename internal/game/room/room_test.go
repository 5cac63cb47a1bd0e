package room

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YUVAUV7/set-card-pass/internal/apperrors"
	"github.com/YUVAUV7/set-card-pass/internal/config"
	"github.com/YUVAUV7/set-card-pass/internal/protocol"
	"github.com/YUVAUV7/set-card-pass/internal/protocol/codec"
	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
	"github.com/YUVAUV7/set-card-pass/internal/testutil"
)

func newTestManager() *Manager {
	return &Manager{
		cfg:   config.Default(),
		rooms: make(map[string]*Room),
	}
}

func TestManager_CreateRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	client := &testutil.SimpleClient{ID: "p1", Name: "Alice"}

	room, err := m.CreateRoom(client)
	require.NoError(t, err)
	require.NotNil(t, room)

	assert.Len(t, room.Code, roomCodeLength)
	for _, c := range room.Code {
		assert.Contains(t, roomCodeChars, string(c))
	}
	assert.Equal(t, RoomStateWaiting, room.State)
	assert.Equal(t, "p1", room.HostID)
	assert.Equal(t, room.Code, client.RoomCode)

	player, ok := room.GetPlayer("p1")
	require.True(t, ok)
	assert.Equal(t, 0, player.Seat)
	assert.False(t, player.Ready)
}

func TestManager_JoinRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	guest := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	joined, err := m.JoinRoom(guest, room.Code)
	require.NoError(t, err)
	assert.Same(t, room, joined)

	player, ok := room.GetPlayer("p2")
	require.True(t, ok)
	assert.Equal(t, 1, player.Seat)

	// Host is notified
	assert.NotEmpty(t, host.Messages)
}

func TestManager_JoinRoom_CaseInsensitiveCode(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	guest := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	joined, err := m.JoinRoom(guest, " "+strings.ToLower(room.Code)+" ")
	require.NoError(t, err)
	assert.Same(t, room, joined)
}

func TestManager_JoinRoom_Idempotent(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	// Joining the room you are already in succeeds without a new seat
	joined, err := m.JoinRoom(host, room.Code)
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Equal(t, 1, room.PlayerCount())
}

func TestManager_JoinRoom_Errors(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	// Unknown room
	_, err = m.JoinRoom(&testutil.SimpleClient{ID: "px", Name: "X"}, "NOPE99")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	// Fill remaining seats
	for i := 2; i <= 4; i++ {
		c := &testutil.SimpleClient{ID: strings.Repeat("p", i), Name: "P"}
		_, err = m.JoinRoom(c, room.Code)
		require.NoError(t, err)
	}
	_, err = m.JoinRoom(&testutil.SimpleClient{ID: "p5", Name: "Eve"}, room.Code)
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	// Already selecting
	room.SetState(RoomStateSelecting)
	_, err = m.JoinRoom(&testutil.SimpleClient{ID: "p6", Name: "Mallory"}, room.Code)
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestManager_AddBot(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	_, bot, err := m.AddBot(host)
	require.NoError(t, err)
	assert.True(t, bot.IsBot)
	assert.True(t, bot.Ready)
	assert.Equal(t, 1, bot.Seat)
	assert.NotEmpty(t, bot.Name)

	// Bots fill seats like humans do
	for i := 0; i < 2; i++ {
		_, _, err = m.AddBot(host)
		require.NoError(t, err)
	}
	_, _, err = m.AddBot(host)
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	// Host plus three ready bots can start
	require.NoError(t, m.SetPlayerReady(host, true))
	assert.True(t, m.CanStart(room))
}

func TestManager_LeaveRoom(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	guest := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	_, err = m.JoinRoom(guest, room.Code)
	require.NoError(t, err)

	m.LeaveRoom(host)

	assert.Empty(t, host.RoomCode)
	_, ok := room.GetPlayer("p1")
	assert.False(t, ok)

	// Seats compact and host role transfers to the remaining human
	player, ok := room.GetPlayer("p2")
	require.True(t, ok)
	assert.Equal(t, 0, player.Seat)
	assert.Equal(t, "p2", room.HostID)

	// Last human leaving dissolves the room even with bots seated
	_, _, err = m.AddBot(guest)
	require.NoError(t, err)
	m.LeaveRoom(guest)
	assert.Nil(t, m.GetRoom(room.Code))
}

func TestManager_SetPlayerReady(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)
	guest := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	_, err = m.JoinRoom(guest, room.Code)
	require.NoError(t, err)

	assert.False(t, m.CanStart(room))

	require.NoError(t, m.SetPlayerReady(host, true))
	assert.False(t, m.CanStart(room))

	require.NoError(t, m.SetPlayerReady(guest, true))
	assert.True(t, m.CanStart(room))

	// Cancelling ready blocks the start again
	require.NoError(t, m.SetPlayerReady(guest, false))
	assert.False(t, m.CanStart(room))

	// Not in any room
	err = m.SetPlayerReady(&testutil.SimpleClient{ID: "px", Name: "X"}, true)
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
}

func TestManager_ChooseItem(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)
	guest := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	_, err = m.JoinRoom(guest, room.Code)
	require.NoError(t, err)

	// Choosing before the category is locked fails
	_, err = m.ChooseItem(host, "Tiger")
	assert.ErrorIs(t, err, apperrors.ErrGameNotStart)

	m.BeginSelecting(room, "animals")
	assert.Equal(t, RoomStateSelecting, room.GetState())
	assert.Equal(t, "animals", room.Category)

	_, err = m.ChooseItem(host, "Tiger")
	require.NoError(t, err)
	assert.False(t, m.AllItemsChosen(room))

	// The same target cannot be taken twice
	_, err = m.ChooseItem(guest, "Tiger")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSetup)

	_, err = m.ChooseItem(guest, "Lion")
	require.NoError(t, err)
	assert.True(t, m.AllItemsChosen(room))
}

func TestManager_GetRoomList(t *testing.T) {
	t.Parallel()

	m := newTestManager()

	room := NewMockRoom("ABC234")
	room.State = RoomStateWaiting
	room.CreatedAt = time.Now()
	room.Players["p1"] = &RoomPlayer{
		Client: &testutil.SimpleClient{ID: "p1", Name: "Player1"},
		ID:     "p1",
		Name:   "Player1",
	}
	room.PlayerOrder = []string{"p1"}
	m.AddRoomForTest(room)

	// Rooms already playing are hidden
	playing := NewMockRoom("DEF567")
	playing.State = RoomStatePlaying
	m.AddRoomForTest(playing)

	rooms := m.GetRoomList()

	assert.Len(t, rooms, 1)
	roomItem := rooms[0]
	assert.Equal(t, "ABC234", roomItem.RoomCode)
	assert.Equal(t, 1, roomItem.PlayerCount)
	assert.Equal(t, 4, roomItem.MaxPlayers)
}

func TestRoom_CheckAllReady(t *testing.T) {
	t.Parallel()

	room := &Room{
		Players: make(map[string]*RoomPlayer),
	}

	// Case 1: Not enough players
	room.Players["p1"] = &RoomPlayer{Ready: true}
	assert.False(t, room.checkAllReady(2))

	// Case 2: Enough players, but not all ready
	room.Players["p2"] = &RoomPlayer{Ready: false}
	assert.False(t, room.checkAllReady(2))

	// Case 3: All ready
	room.Players["p2"].Ready = true
	assert.True(t, room.checkAllReady(2))

	// Bots count as ready
	room.Players["bot"] = &RoomPlayer{IsBot: true}
	assert.True(t, room.checkAllReady(3))
}

func TestRoom_GetPlayerInfo(t *testing.T) {
	t.Parallel()

	room := NewMockRoom("ROOM01")
	client := &testutil.SimpleClient{ID: "p1", Name: "TestPlayer"}
	room.Players["p1"] = &RoomPlayer{
		Client:     client,
		ID:         "p1",
		Name:       "TestPlayer",
		Seat:       1,
		Ready:      true,
		ChosenItem: "Tiger",
	}

	info := room.GetPlayerInfo("p1")

	assert.Equal(t, "p1", info.ID)
	assert.Equal(t, "TestPlayer", info.Name)
	assert.Equal(t, 1, info.Seat)
	assert.True(t, info.Ready)
	assert.Equal(t, "Tiger", info.ChosenItem)
}

func TestManager_GetRoomByPlayerID(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	assert.Same(t, room, m.GetRoomByPlayerID("p1"))
	assert.Nil(t, m.GetRoomByPlayerID("ghost"))
}

func TestManager_ReconnectPlayer(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := &testutil.SimpleClient{ID: "p1", Name: "Alice"}
	room, err := m.CreateRoom(host)
	require.NoError(t, err)
	guest := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	_, err = m.JoinRoom(guest, room.Code)
	require.NoError(t, err)

	m.NotifyPlayerOffline(guest)
	player, ok := room.GetPlayer("p2")
	require.True(t, ok)
	assert.Nil(t, player.Client)

	newClient := &testutil.SimpleClient{ID: "p2", Name: "Bob"}
	require.NoError(t, m.ReconnectPlayer(newClient, room.Code))

	player, ok = room.GetPlayer("p2")
	require.True(t, ok)
	assert.NotNil(t, player.Client)
	assert.Equal(t, room.Code, newClient.RoomCode)
}

func TestRoom_BroadcastConcurrentWithJoins(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := testutil.NewSimpleClient("p1", "Alice")
	room, err := m.CreateRoom(host)
	require.NoError(t, err)

	// Broadcasts snapshot the member list under the room lock, so sending
	// while seats are still being filled must stay race-free.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			room.Broadcast(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{}))
			room.BroadcastExcept("p1", codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{}))
		}
	}()

	for i := 2; i <= 4; i++ {
		guest := testutil.NewSimpleClient(fmt.Sprintf("p%d", i), "Guest")
		_, err := m.JoinRoom(guest, room.Code)
		require.NoError(t, err)
	}
	<-done

	assert.NotEmpty(t, host.MessagesOfType(protocol.MsgPong))
}

func TestManager_NotifyPlayerOffline_CountdownMatchesServerWait(t *testing.T) {
	t.Parallel()

	m := newTestManager()
	host := testutil.NewSimpleClient("p1", "Alice")
	room, err := m.CreateRoom(host)
	require.NoError(t, err)
	guest := testutil.NewSimpleClient("p2", "Bob")
	_, err = m.JoinRoom(guest, room.Code)
	require.NoError(t, err)

	m.NotifyPlayerOffline(guest)

	// The countdown sent to remaining players equals the wait the server
	// actually applies before force-passing the seat.
	notices := host.MessagesOfType(protocol.MsgPlayerOffline)
	require.Len(t, notices, 1)
	payload, err := codec.ParsePayload[protocol.PlayerOfflinePayload](notices[0])
	require.NoError(t, err)
	assert.Equal(t, "p2", payload.PlayerID)
	assert.Equal(t, protocol.OfflineWaitSeconds, payload.Timeout)
}

func TestManager_RestoreRooms(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	store := storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	// One waiting room and one finished room left over from a previous run.
	require.NoError(t, store.SaveRoom(ctx, &storage.RoomData{
		Code:   "WAIT23",
		State:  int(RoomStateWaiting),
		HostID: "p1",
		Players: []storage.PlayerData{
			{ID: "p1", Name: "Alice", Seat: 0},
			{ID: "bot-1", Name: "Bot", Seat: 1, Ready: true, IsBot: true},
		},
		PlayerOrder: []string{"p1", "bot-1"},
		CreatedAt:   time.Now().Unix(),
	}))
	require.NoError(t, store.SaveRoom(ctx, &storage.RoomData{
		Code:      "OVER23",
		State:     int(RoomStateEnded),
		HostID:    "p9",
		CreatedAt: time.Now().Unix(),
	}))

	m := &Manager{
		redisStore: store,
		cfg:        config.Default(),
		rooms:      make(map[string]*Room),
	}

	restored, err := m.RestoreRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	// The waiting room is back, with empty client slots for humans.
	room := m.GetRoom("WAIT23")
	require.NotNil(t, room)
	assert.Equal(t, RoomStateWaiting, room.State)
	player, ok := room.GetPlayer("p1")
	require.True(t, ok)
	assert.Nil(t, player.Client)
	assert.Equal(t, 0, player.Seat)

	// The finished room is neither restored nor kept in Redis.
	assert.Nil(t, m.GetRoom("OVER23"))
	data, err := store.LoadRoom(ctx, "OVER23")
	require.NoError(t, err)
	assert.Nil(t, data)
}
