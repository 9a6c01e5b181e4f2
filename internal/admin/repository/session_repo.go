package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dreamspace-builders/site-backend/internal/admin/domain"
)

const keyPrefix = "admin:session:"

// SessionRepo keeps admin sessions in Redis under admin:session:{token}
// with the session lifetime as TTL.
type SessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepo(rdb *redis.Client) *SessionRepo {
	return &SessionRepo{rdb: rdb}
}

type sessionRecord struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *SessionRepo) Save(ctx context.Context, s domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save session: already expired")
	}
	b, err := json.Marshal(sessionRecord{Username: s.Username, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+s.Token, b, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, token string) (*domain.Session, error) {
	b, err := r.rdb.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &domain.Session{
		Token:     token,
		Username:  rec.Username,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Delete removes the session and everything scoped to it.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	key := keyPrefix + token
	var scoped []string
	iter := r.rdb.Scan(ctx, 0, key+":*", 100).Iterator()
	for iter.Next(ctx) {
		scoped = append(scoped, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan session keys: %w", err)
	}

	if err := r.rdb.Del(ctx, append(scoped, key)...).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
