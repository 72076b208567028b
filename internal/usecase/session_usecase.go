package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kala/internal/domain/catalog"
	"kala/internal/domain/onboarding"
	"kala/internal/domain/session"
	"kala/internal/pkg/jwt"
	"kala/internal/pkg/task"

	"github.com/google/uuid"
)

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionView is the navigator position of a session plus derived progress.
type SessionView struct {
	ID            uuid.UUID           `json:"id"`
	State         onboarding.State    `json:"state"`
	Route         string              `json:"route"`
	CarouselIndex int                 `json:"carousel_index"`
	SlideCount    int                 `json:"slide_count"`
	AppLanguage   catalog.Language    `json:"app_language"`
	Guest         bool                `json:"guest"`
	Completed     bool                `json:"completed"`
	Progress      onboarding.Progress `json:"progress"`
}

type SessionUsecase interface {
	Start(ctx context.Context) (SessionView, Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
	Get(ctx context.Context, id uuid.UUID) (SessionView, error)
	End(ctx context.Context, id uuid.UUID) error
}

type tokenIssuer interface {
	jwt.Service
	AccessTTL() time.Duration
}

type Sessions struct {
	store   session.Store
	nav     *onboarding.Navigator
	jwt     tokenIssuer
	replies *task.Group
	locks   *SessionLocks
	now     func() time.Time
}

func NewSessionUsecase(store session.Store, nav *onboarding.Navigator, jwtSvc tokenIssuer, replies *task.Group, locks *SessionLocks) *Sessions {
	if replies == nil {
		replies = task.NewGroup()
	}
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &Sessions{store: store, nav: nav, jwt: jwtSvc, replies: replies, locks: locks, now: time.Now}
}

func (u *Sessions) Start(ctx context.Context) (SessionView, Tokens, error) {
	sess := session.New(u.nav.Start(), u.now())
	if err := u.store.Create(ctx, sess); err != nil {
		return SessionView{}, Tokens{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	tokens, err := u.issue(sess.ID)
	if err != nil {
		return SessionView{}, Tokens{}, err
	}
	return u.view(sess), tokens, nil
}

func (u *Sessions) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Tokens{}, ErrRefreshTokenExpired
		}
		return Tokens{}, ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return Tokens{}, ErrInvalidRefreshToken
	}

	if _, err := u.store.Get(ctx, claims.SessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrInvalidRefreshToken
		}
		return Tokens{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return u.issue(claims.SessionID)
}

func (u *Sessions) Get(ctx context.Context, id uuid.UUID) (SessionView, error) {
	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return u.view(sess), nil
}

// End deletes the session and drops its undelivered chat replies.
func (u *Sessions) End(ctx context.Context, id uuid.UUID) error {
	unlock := u.locks.Lock(id)
	defer unlock()

	u.replies.Cancel(id.String())
	return u.store.Delete(ctx, id)
}

func (u *Sessions) issue(id uuid.UUID) (Tokens, error) {
	access, err := u.jwt.GenerateAccessToken(id)
	if err != nil {
		return Tokens{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(id)
	if err != nil {
		return Tokens{}, ErrInternal
	}
	return Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(u.jwt.AccessTTL().Seconds()),
	}, nil
}

func (u *Sessions) view(sess session.Session) SessionView {
	w := sess.Wizard
	return SessionView{
		ID:            sess.ID,
		State:         w.State,
		Route:         w.State.Route(),
		CarouselIndex: w.CarouselIndex,
		SlideCount:    u.nav.SlideCount(),
		AppLanguage:   w.AppLanguage,
		Guest:         w.Guest,
		Completed:     w.Completed,
		Progress:      onboarding.ComputeProgress(w.Draft),
	}
}
