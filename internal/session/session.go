package session

import (
	"context"
	"errors"

	"animehost/internal/models"
)

// ErrNoSession covers missing, expired, and tampered tokens alike; callers
// only ever need to know the browser is not logged in.
var ErrNoSession = errors.New("no session")

// Store creates, resolves, and destroys login sessions by opaque token.
// The token handed to the browser is a signed wrapper around the session id;
// the record itself lives in the chosen backend.
type Store interface {
	Create(ctx context.Context, user models.User) (string, error)
	Get(ctx context.Context, token string) (models.Session, error)
	Destroy(ctx context.Context, token string) error
}
