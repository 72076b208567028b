package profile

import (
	"context"
	"errors"
	"time"

	"kala/internal/domain/onboarding"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the committed result of the onboarding wizard.
type Profile struct {
	SessionID   uuid.UUID        `json:"session_id"`
	Data        onboarding.Draft `json:"data"`
	CompletedAt time.Time        `json:"completed_at"`
}

func FromDraft(sessionID uuid.UUID, d onboarding.Draft, now time.Time) Profile {
	return Profile{SessionID: sessionID, Data: d.Clone(), CompletedAt: now.UTC()}
}

type Repository interface {
	// Save inserts or replaces the profile of p.SessionID.
	Save(ctx context.Context, p Profile) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (Profile, error)
}
