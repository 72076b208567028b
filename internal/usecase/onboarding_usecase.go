package usecase

import (
	"context"
	"strings"
	"time"

	"kala/internal/domain/catalog"
	"kala/internal/domain/onboarding"
	"kala/internal/domain/profile"
	"kala/internal/domain/session"

	"github.com/google/uuid"
)

// DraftView is the draft with its derived progress.
type DraftView struct {
	Draft    onboarding.Draft    `json:"draft"`
	Progress onboarding.Progress `json:"progress"`
}

type OnboardingUsecase interface {
	Draft(ctx context.Context, id uuid.UUID) (DraftView, error)
	Patch(ctx context.Context, id uuid.UUID, p onboarding.DraftPatch) (DraftView, error)
	Toggle(ctx context.Context, id uuid.UUID, field onboarding.SetField, optionID string) (DraftView, error)
	Connect(ctx context.Context, id uuid.UUID, platformID string) (DraftView, onboarding.Notice, error)
	Progress(ctx context.Context, id uuid.UUID) (onboarding.Progress, error)
	ValidateStep(ctx context.Context, id uuid.UUID, step onboarding.Step) (onboarding.Result, error)
	Profile(ctx context.Context, id uuid.UUID) (profile.Profile, error)
}

type Onboarding struct {
	store    session.Store
	profiles profile.Repository
	cat      *catalog.Catalog
	locks    *SessionLocks
	now      func() time.Time
}

func NewOnboardingUsecase(store session.Store, profiles profile.Repository, cat *catalog.Catalog, locks *SessionLocks) *Onboarding {
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &Onboarding{store: store, profiles: profiles, cat: cat, locks: locks, now: time.Now}
}

func (u *Onboarding) Draft(ctx context.Context, id uuid.UUID) (DraftView, error) {
	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return DraftView{}, err
	}
	return draftView(sess.Wizard.Draft), nil
}

func (u *Onboarding) Patch(ctx context.Context, id uuid.UUID, p onboarding.DraftPatch) (DraftView, error) {
	return u.mutate(ctx, id, func(d onboarding.Draft) (onboarding.Draft, error) {
		return d.Apply(u.cat, p)
	})
}

func (u *Onboarding) Toggle(ctx context.Context, id uuid.UUID, field onboarding.SetField, optionID string) (DraftView, error) {
	return u.mutate(ctx, id, func(d onboarding.Draft) (onboarding.Draft, error) {
		return d.Toggle(u.cat, field, optionID)
	})
}

// Connect records a platform connection. There is no external account
// exchange; the notice mirrors the confirmation shown to the artisan.
func (u *Onboarding) Connect(ctx context.Context, id uuid.UUID, platformID string) (DraftView, onboarding.Notice, error) {
	platformID = strings.TrimSpace(platformID)
	v, err := u.mutate(ctx, id, func(d onboarding.Draft) (onboarding.Draft, error) {
		return d.ConnectPlatform(u.cat, platformID)
	})
	if err != nil {
		return DraftView{}, onboarding.Notice{}, err
	}
	opt, err := u.cat.Option(catalog.KindPlatforms, platformID)
	if err != nil {
		return DraftView{}, onboarding.Notice{}, err
	}
	return v, onboarding.ConnectedNotice(opt.Name), nil
}

func (u *Onboarding) Progress(ctx context.Context, id uuid.UUID) (onboarding.Progress, error) {
	v, err := u.Draft(ctx, id)
	if err != nil {
		return onboarding.Progress{}, err
	}
	return v.Progress, nil
}

func (u *Onboarding) ValidateStep(ctx context.Context, id uuid.UUID, step onboarding.Step) (onboarding.Result, error) {
	if !step.Valid() {
		return onboarding.Result{}, onboarding.ErrUnknownStep
	}
	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return onboarding.Result{}, err
	}
	return onboarding.Validate(step, sess.Wizard.Draft), nil
}

func (u *Onboarding) Profile(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	return u.profiles.GetBySession(ctx, id)
}

func (u *Onboarding) mutate(ctx context.Context, id uuid.UUID, fn func(onboarding.Draft) (onboarding.Draft, error)) (DraftView, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return DraftView{}, err
	}
	next, err := fn(sess.Wizard.Draft)
	if err != nil {
		return DraftView{}, err
	}
	sess.Wizard.Draft = next
	sess.UpdatedAt = u.now().UTC()
	if err := u.store.Save(ctx, sess); err != nil {
		return DraftView{}, err
	}
	return draftView(next), nil
}

func draftView(d onboarding.Draft) DraftView {
	return DraftView{Draft: d, Progress: onboarding.ComputeProgress(d)}
}
