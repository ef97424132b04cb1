package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewManager(client), mr
}

func issue(t *testing.T, m *Manager, operatorID, jti string) {
	t.Helper()
	require.NoError(t, m.CreateSession(context.Background(), &OperatorSession{
		JTI:        jti,
		OperatorID: operatorID,
		Roles:      []string{"operator"},
		IssuedAt:   time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}))
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	issue(t, m, "baker-1", "jti-1")

	s, err := m.GetSession(ctx, "jti-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "baker-1", s.OperatorID)

	missing, err := m.GetSession(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestManager_RejectsExpiredSession(t *testing.T) {
	m, _ := newManager(t)
	err := m.CreateSession(context.Background(), &OperatorSession{
		JTI:        "old",
		OperatorID: "baker-1",
		ExpiresAt:  time.Now().Add(-time.Minute),
	})
	require.Error(t, err)
}

func TestManager_InvalidateSessionBlacklists(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	issue(t, m, "baker-1", "jti-1")

	require.NoError(t, m.InvalidateSession(ctx, "jti-1"))

	revoked, err := m.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	s, err := m.GetSession(ctx, "jti-1")
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestManager_InvalidateAllOperatorSessions(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	issue(t, m, "baker-1", "a")
	issue(t, m, "baker-1", "b")
	issue(t, m, "baker-2", "c")

	n, err := m.InvalidateAllOperatorSessions(ctx, "baker-1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	for _, jti := range []string{"a", "b"} {
		revoked, err := m.IsTokenBlacklisted(ctx, jti)
		require.NoError(t, err)
		require.True(t, revoked)
	}
	revoked, err := m.IsTokenBlacklisted(ctx, "c")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestManager_ActiveSessionsPrunesExpired(t *testing.T) {
	m, mr := newManager(t)
	ctx := context.Background()
	issue(t, m, "baker-1", "a")
	mr.Del("operator_session:a")

	sessions, err := m.ActiveSessions(ctx, "baker-1")
	require.NoError(t, err)
	require.Empty(t, sessions)

	require.False(t, mr.Exists("operator_sessions:baker-1"))
}

func TestManager_DisabledIsNoop(t *testing.T) {
	var m *Manager
	ctx := context.Background()

	require.False(t, m.Enabled())
	require.NoError(t, m.CreateSession(ctx, &OperatorSession{JTI: "x", ExpiresAt: time.Now().Add(time.Hour)}))
	revoked, err := m.IsTokenBlacklisted(ctx, "x")
	require.NoError(t, err)
	require.False(t, revoked)

	sessions, err := NewManager(nil).ActiveSessions(ctx, "baker-1")
	require.NoError(t, err)
	require.Nil(t, sessions)
}
