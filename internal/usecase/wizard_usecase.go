package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kala/internal/domain/onboarding"
	"kala/internal/domain/profile"
	"kala/internal/domain/session"
	"kala/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WizardUsecase interface {
	Apply(ctx context.Context, id uuid.UUID, ev onboarding.Event) (onboarding.Transition, error)
}

type Wizard struct {
	store    session.Store
	profiles profile.Repository
	nav      *onboarding.Navigator
	locks    *SessionLocks
	logger   *zap.Logger
	now      func() time.Time
}

func NewWizardUsecase(store session.Store, profiles profile.Repository, nav *onboarding.Navigator, locks *SessionLocks, logger *zap.Logger) *Wizard {
	if locks == nil {
		locks = NewSessionLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{store: store, profiles: profiles, nav: nav, locks: locks, logger: logger, now: time.Now}
}

// Apply runs one navigator action. When the action completes the goals
// step the profile is written before the session is saved, so a failed
// write leaves the wizard on goals.
func (u *Wizard) Apply(ctx context.Context, id uuid.UUID, ev onboarding.Event) (onboarding.Transition, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	sess, err := u.store.Get(ctx, id)
	if err != nil {
		return onboarding.Transition{}, err
	}

	t, err := u.nav.Apply(sess.Wizard, ev)
	if err != nil {
		metrics.WizardTransitions.WithLabelValues(string(ev.Action), outcome(err)).Inc()
		return t, err
	}

	now := u.now()
	if t.Committed {
		p := profile.FromDraft(sess.ID, t.Wizard.Draft, now)
		if err := u.profiles.Save(ctx, p); err != nil {
			metrics.WizardTransitions.WithLabelValues(string(ev.Action), "error").Inc()
			return onboarding.Transition{}, fmt.Errorf("%w: save profile: %v", ErrInternal, err)
		}
		metrics.ProfilesCommitted.Inc()
		u.logger.Info("artisan profile committed", zap.String("session_id", sess.ID.String()))
	}

	sess.Wizard = t.Wizard
	sess.UpdatedAt = now.UTC()
	if err := u.store.Save(ctx, sess); err != nil {
		metrics.WizardTransitions.WithLabelValues(string(ev.Action), "error").Inc()
		return onboarding.Transition{}, err
	}

	metrics.WizardTransitions.WithLabelValues(string(ev.Action), "ok").Inc()
	return t, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, onboarding.ErrIncompleteStep):
		return "incomplete"
	case errors.Is(err, onboarding.ErrInvalidTransition):
		return "invalid"
	default:
		return "rejected"
	}
}
