package session

import (
	"context"
	"errors"
	"time"

	"kala/internal/domain/chat"
	"kala/internal/domain/onboarding"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session already exists")
)

// Session owns the wizard state and the chat log of one client.
type Session struct {
	ID        uuid.UUID         `json:"id"`
	Wizard    onboarding.Wizard `json:"wizard"`
	Messages  []chat.Message    `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func New(w onboarding.Wizard, now time.Time) Session {
	now = now.UTC()
	return Session{
		ID:        uuid.New(),
		Wizard:    w,
		Messages:  chat.NewLog(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	// Save replaces an existing session and refreshes its expiry.
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}
