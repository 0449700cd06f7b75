package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 90 * time.Second

// Store tracks which users currently hold at least one realtime connection.
// Connection counts live in Redis so every instance sees the same view.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore builds a presence store. The client may be nil, in which case all
// users read as offline and connect/disconnect are no-ops.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, ttl: defaultTTL}
}

func (s *Store) key(userID int) string {
	return fmt.Sprintf("%s:online:%d", s.prefix, userID)
}

// Connected records one more live connection for the user. The key carries a
// TTL so a crashed instance cannot leave users online forever; Touch renews it.
func (s *Store) Connected(ctx context.Context, userID int) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Incr(ctx, s.key(userID)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, s.key(userID), s.ttl).Err()
}

// Disconnected drops one connection for the user and clears the key when the
// last one goes away.
func (s *Store) Disconnected(ctx context.Context, userID int) error {
	if s.client == nil {
		return nil
	}
	remaining, err := s.client.Decr(ctx, s.key(userID)).Result()
	if err != nil {
		return err
	}
	if remaining <= 0 {
		return s.client.Del(ctx, s.key(userID)).Err()
	}
	return nil
}

// Touch renews the TTL for a user with live connections.
func (s *Store) Touch(ctx context.Context, userID int) error {
	if s.client == nil {
		return nil
	}
	return s.client.Expire(ctx, s.key(userID), s.ttl).Err()
}

// IsOnline reports whether the user has at least one live connection.
func (s *Store) IsOnline(ctx context.Context, userID int) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	count, err := s.client.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
