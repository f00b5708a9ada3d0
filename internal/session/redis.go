package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"animehost/internal/ids"
	"animehost/internal/models"
	"animehost/internal/security"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in redis with a TTL matching the session
// lifetime, so expiry needs no sweeping of our own.
type RedisStore struct {
	client *redis.Client
	secret string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, secret string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		secret: secret,
		ttl:    ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, user models.User) (string, error) {
	sess := models.Session{
		ID:        ids.New(),
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	token, err := security.SignSessionToken(s.secret, sess.ID, s.ttl)
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (models.Session, error) {
	sid, err := security.ParseSessionToken(token, s.secret)
	if err != nil {
		return models.Session{}, ErrNoSession
	}

	payload, err := s.client.Get(ctx, redisKeyPrefix+sid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrNoSession
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return models.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	sid, err := security.ParseSessionToken(token, s.secret)
	if err != nil {
		return ErrNoSession
	}
	return s.client.Del(ctx, redisKeyPrefix+sid).Err()
}
