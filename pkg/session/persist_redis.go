package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"givelife/pkg/domain"
)

const redisOpTimeout = 3 * time.Second

// RedisSessions hands out per-session persisters backed by one Redis hash
// each (fields token and user) with a sliding TTL.
type RedisSessions struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessions builds a session registry on an existing client. The
// caller owns the client.
func NewRedisSessions(client *redis.Client, prefix string, ttl time.Duration) (*RedisSessions, error) {
	if client == nil {
		return nil, errors.New("session redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "givelife:session"
	}
	return &RedisSessions{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

// For returns the persister for one session id.
func (s *RedisSessions) For(sessionID string) Persister {
	return &redisPersister{sessions: s, key: s.prefix + ":" + sessionID}
}

type redisPersister struct {
	sessions *RedisSessions
	key      string
}

func (p *redisPersister) Load(ctx context.Context) (Snapshot, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	fields, err := p.sessions.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load session: %w", err)
	}
	token, rawUser := fields["token"], fields["user"]
	if token == "" || rawUser == "" {
		return Snapshot{}, false, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode stored user: %w", err)
	}
	if err := p.sessions.client.Expire(ctx, p.key, p.sessions.ttl).Err(); err != nil {
		return Snapshot{}, false, fmt.Errorf("refresh session ttl: %w", err)
	}
	return Snapshot{Token: token, User: user}, true, nil
}

func (p *redisPersister) Save(ctx context.Context, snap Snapshot) error {
	user, err := json.Marshal(snap.User)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	_, err = p.sessions.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.key, "token", snap.Token, "user", string(user))
		pipe.Expire(ctx, p.key, p.sessions.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *redisPersister) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := p.sessions.client.Del(ctx, p.key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
