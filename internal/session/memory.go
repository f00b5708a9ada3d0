package session

import (
	"context"
	"sync"
	"time"

	"animehost/internal/ids"
	"animehost/internal/models"
	"animehost/internal/security"
)

// MemoryStore keeps sessions in-process. Suitable for a single node;
// multi-node deployments should use the redis backend.
type MemoryStore struct {
	secret string
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryStore(secret string, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		secret:   secret,
		ttl:      ttl,
		sessions: make(map[string]models.Session),
	}
}

func (s *MemoryStore) Create(_ context.Context, user models.User) (string, error) {
	sess := models.Session{
		ID:        ids.New(),
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	token, err := security.SignSessionToken(s.secret, sess.ID, s.ttl)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (models.Session, error) {
	sid, err := security.ParseSessionToken(token, s.secret)
	if err != nil {
		return models.Session{}, ErrNoSession
	}

	s.mu.RLock()
	sess, ok := s.sessions[sid]
	s.mu.RUnlock()

	if !ok {
		return models.Session{}, ErrNoSession
	}
	if time.Now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		return models.Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	sid, err := security.ParseSessionToken(token, s.secret)
	if err != nil {
		return ErrNoSession
	}

	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	return nil
}
