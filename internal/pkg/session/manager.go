// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Manager records issued operator tokens in Redis so they can be listed and
// revoked before they expire. A nil Manager, or one without a client, tracks
// nothing and revokes nothing.
type Manager struct {
	client redis.Cmdable
}

func NewManager(client redis.Cmdable) *Manager {
	return &Manager{client: client}
}

// Enabled reports whether sessions are backed by Redis.
func (m *Manager) Enabled() bool {
	return m != nil && m.client != nil
}

// CreateSession stores a freshly minted token until it expires.
func (m *Manager) CreateSession(ctx context.Context, s *OperatorSession) error {
	if !m.Enabled() {
		return nil
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.client.Set(ctx, m.sessionKey(s.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}

	idx := m.indexKey(s.OperatorID)
	if err := m.client.SAdd(ctx, idx, s.JTI).Err(); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}
	// The index lives as long as the newest token.
	if cur, err := m.client.TTL(ctx, idx).Result(); err == nil && cur < ttl {
		m.client.Expire(ctx, idx, ttl)
	}
	return nil
}

// GetSession returns nil, nil when the token is unknown or expired.
func (m *Manager) GetSession(ctx context.Context, jti string) (*OperatorSession, error) {
	if !m.Enabled() {
		return nil, nil
	}

	data, err := m.client.Get(ctx, m.sessionKey(jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s OperatorSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// ActiveSessions lists an operator's unexpired tokens and prunes stale index
// entries on the way.
func (m *Manager) ActiveSessions(ctx context.Context, operatorID string) ([]*OperatorSession, error) {
	if !m.Enabled() {
		return nil, nil
	}

	idx := m.indexKey(operatorID)
	jtis, err := m.client.SMembers(ctx, idx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*OperatorSession, 0, len(jtis))
	for _, jti := range jtis {
		s, err := m.GetSession(ctx, jti)
		if err != nil {
			return nil, err
		}
		if s == nil {
			m.client.SRem(ctx, idx, jti)
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// InvalidateSession revokes a single token.
func (m *Manager) InvalidateSession(ctx context.Context, jti string) error {
	if !m.Enabled() {
		return nil
	}

	s, err := m.GetSession(ctx, jti)
	if err != nil {
		return err
	}

	ttl := time.Hour
	if s != nil {
		ttl = time.Until(s.ExpiresAt)
		m.client.SRem(ctx, m.indexKey(s.OperatorID), jti)
	}
	if err := m.client.Del(ctx, m.sessionKey(jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return m.BlacklistToken(ctx, jti, ttl)
}

// InvalidateAllOperatorSessions revokes every token the operator holds and
// returns how many were revoked.
func (m *Manager) InvalidateAllOperatorSessions(ctx context.Context, operatorID string) (int, error) {
	sessions, err := m.ActiveSessions(ctx, operatorID)
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		if err := m.InvalidateSession(ctx, s.JTI); err != nil {
			return 0, err
		}
	}
	return len(sessions), nil
}

func (m *Manager) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if !m.Enabled() {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	if err := m.client.Set(ctx, m.blacklistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (m *Manager) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if !m.Enabled() {
		return false, nil
	}
	n, err := m.client.Exists(ctx, m.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}

func (m *Manager) sessionKey(jti string) string {
	return "operator_session:" + jti
}

func (m *Manager) indexKey(operatorID string) string {
	return "operator_sessions:" + operatorID
}

func (m *Manager) blacklistKey(jti string) string {
	return "blacklist:" + jti
}
