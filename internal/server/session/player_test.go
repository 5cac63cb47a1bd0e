package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YUVAUV7/set-card-pass/internal/server/storage"
)

func TestSessionManager_CRUD(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(nil)

	// Create
	session := sm.CreateSession("p1", "Player1")
	assert.NotNil(t, session)
	assert.Equal(t, "p1", session.PlayerID)
	assert.Equal(t, "Player1", session.PlayerName)
	assert.NotEmpty(t, session.ReconnectToken)
	assert.True(t, session.IsOnline)

	// Get by ID
	s1 := sm.GetSession("p1")
	assert.Equal(t, session, s1)

	// Get by Token
	s2 := sm.GetSessionByToken(session.ReconnectToken)
	assert.Equal(t, session, s2)

	// Delete
	sm.DeleteSession("p1")
	assert.Nil(t, sm.GetSession("p1"))
	assert.Nil(t, sm.GetSessionByToken(session.ReconnectToken))
}

func TestSessionManager_TokensAreUnique(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(nil)

	s1 := sm.CreateSession("p1", "Player1")
	s2 := sm.CreateSession("p2", "Player2")
	assert.NotEqual(t, s1.ReconnectToken, s2.ReconnectToken)
	assert.Len(t, s1.ReconnectToken, 64)
}

func TestSessionManager_OnlineStatus(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(nil)
	session := sm.CreateSession("p1", "Player1")

	// Initial state: online
	assert.True(t, session.IsOnline)
	assert.True(t, session.DisconnectedAt.IsZero())

	// Set Offline
	sm.SetOffline("p1")
	assert.False(t, sm.GetSession("p1").IsOnline)
	assert.False(t, sm.GetSession("p1").DisconnectedAt.IsZero())

	// Set Online again
	sm.SetOnline("p1")
	assert.True(t, sm.GetSession("p1").IsOnline)
	assert.True(t, sm.GetSession("p1").DisconnectedAt.IsZero())
}

func TestSessionManager_SetRoom(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(nil)
	sm.CreateSession("p1", "Player1")

	sm.SetRoom("p1", "ABC234")
	assert.Equal(t, "ABC234", sm.GetSession("p1").RoomCode)

	sm.SetRoom("p1", "")
	assert.Empty(t, sm.GetSession("p1").RoomCode)
}

func TestSessionManager_CanReconnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(sm *SessionManager) (token, playerID string)
		want  bool
	}{
		{
			name: "valid token while online",
			setup: func(sm *SessionManager) (string, string) {
				s := sm.CreateSession("p1", "Player1")
				return s.ReconnectToken, "p1"
			},
			want: true,
		},
		{
			name: "valid token shortly after disconnect",
			setup: func(sm *SessionManager) (string, string) {
				s := sm.CreateSession("p1", "Player1")
				sm.SetOffline("p1")
				return s.ReconnectToken, "p1"
			},
			want: true,
		},
		{
			name: "unknown token",
			setup: func(sm *SessionManager) (string, string) {
				sm.CreateSession("p1", "Player1")
				return "bogus", "p1"
			},
			want: false,
		},
		{
			name: "token does not match player",
			setup: func(sm *SessionManager) (string, string) {
				s := sm.CreateSession("p1", "Player1")
				sm.CreateSession("p2", "Player2")
				return s.ReconnectToken, "p2"
			},
			want: false,
		},
		{
			name: "reconnect window expired",
			setup: func(sm *SessionManager) (string, string) {
				s := sm.CreateSession("p1", "Player1")
				sm.SetOffline("p1")
				s.mu.Lock()
				s.DisconnectedAt = time.Now().Add(-reconnectTimeout - time.Minute)
				s.mu.Unlock()
				return s.ReconnectToken, "p1"
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sm := NewSessionManager(nil)
			token, playerID := tt.setup(sm)
			assert.Equal(t, tt.want, sm.CanReconnect(token, playerID))
		})
	}
}

func TestSessionManager_RestoreAfterRestart(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	store := storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	// First manager mirrors the session to Redis asynchronously.
	sm1 := NewSessionManager(store)
	s := sm1.CreateSession("p1", "Player1")
	require.Eventually(t, func() bool {
		data, err := store.LoadSession(context.Background(), "p1")
		return err == nil && data != nil
	}, time.Second, 10*time.Millisecond)

	// A fresh manager simulates a server restart: nothing in memory.
	sm2 := NewSessionManager(store)
	assert.Nil(t, sm2.GetSession("p1"))

	assert.True(t, sm2.CanReconnect(s.ReconnectToken, "p1"))
	restored := sm2.GetSession("p1")
	require.NotNil(t, restored)
	assert.Equal(t, "Player1", restored.PlayerName)
	assert.Equal(t, s.ReconnectToken, restored.ReconnectToken)
	assert.False(t, restored.IsOnline)

	// A token that does not match the mirror is still rejected.
	assert.False(t, sm2.CanReconnect("bogus", "p1"))
}

func TestSessionManager_CleanupExpired(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(nil)

	s := sm.CreateSession("p1", "Player1")
	sm.CreateSession("p2", "Player2")

	sm.SetOffline("p1")
	s.mu.Lock()
	s.DisconnectedAt = time.Now().Add(-sessionExpireTime - time.Minute)
	s.mu.Unlock()

	sm.cleanup()

	assert.Nil(t, sm.GetSession("p1"))
	assert.NotNil(t, sm.GetSession("p2"))
}
