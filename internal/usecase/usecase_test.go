package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kala/internal/domain/catalog"
	"kala/internal/domain/chat"
	"kala/internal/domain/onboarding"
	"kala/internal/domain/product"
	"kala/internal/domain/profile"
	"kala/internal/domain/session"
	"kala/internal/pkg/jwt"
	"kala/internal/pkg/task"
	"kala/internal/repository"
	sessionstore "kala/internal/infrastructure/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var cat = catalog.MustLoad()

type fixture struct {
	store    *sessionstore.MemoryStore
	profiles *repository.MemoryProfileRepository
	locks    *SessionLocks
	replies  *task.Group
	nav      *onboarding.Navigator
	sessions *Sessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    sessionstore.NewMemoryStore(time.Hour),
		profiles: repository.NewMemoryProfileRepository(),
		locks:    NewSessionLocks(),
		replies:  task.NewGroup(),
		nav:      onboarding.NewNavigator(cat),
	}
	f.sessions = NewSessionUsecase(f.store, f.nav, jwt.NewHMACService("access", "refresh", time.Minute, time.Hour), f.replies, f.locks)
	t.Cleanup(f.replies.Close)
	return f
}

func (f *fixture) start(t *testing.T) uuid.UUID {
	t.Helper()
	v, tokens, err := f.sessions.Start(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	return v.ID
}

// seed puts the session straight onto state with a complete draft.
func (f *fixture) seed(t *testing.T, id uuid.UUID, state onboarding.State) {
	t.Helper()
	sess, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	d, err := onboarding.Draft{}.Apply(cat, onboarding.DraftPatch{
		FullName:          ptr("Maya"),
		PreferredLanguage: ptr("te"),
		CraftCategory:     ptr("pottery"),
		ExperienceLevel:   ptr("expert"),
		ProductTypes:      &[]string{"pottery"},
		PriceRangeTier:    ptr("premium"),
		SelectedPlatforms: &[]string{"instagram"},
		PrimaryGoals:      &[]string{"visibility"},
	})
	require.NoError(t, err)
	sess.Wizard.State = state
	sess.Wizard.Draft = d
	require.NoError(t, f.store.Save(context.Background(), sess))
}

func ptr[T any](v T) *T { return &v }

func TestSessions_StartAndRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, tokens, err := f.sessions.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StateWelcome, v.State)
	assert.Equal(t, "/(onboarding)", v.Route)
	assert.Equal(t, 4, v.SlideCount)
	assert.Equal(t, "en", v.AppLanguage.Code)
	assert.Equal(t, 0, v.Progress.Percentage)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, int64(60), tokens.ExpiresIn)

	_, err = f.sessions.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = f.sessions.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	next, err := f.sessions.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	require.NoError(t, f.sessions.End(ctx, v.ID))
	_, err = f.sessions.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = f.sessions.Get(ctx, v.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestWizard_IntroToIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	wz := NewWizardUsecase(f.store, f.profiles, f.nav, f.locks, nil)

	steps := []struct {
		ev   onboarding.Event
		want onboarding.State
	}{
		{onboarding.Event{Action: onboarding.ActionGetStarted}, onboarding.StateLanguage},
		{onboarding.Event{Action: onboarding.ActionSelectLanguage, Code: "hi"}, onboarding.StateLanguage},
		{onboarding.Event{Action: onboarding.ActionContinue}, onboarding.StateCarousel},
		{onboarding.Event{Action: onboarding.ActionSkip}, onboarding.StateAuth},
		{onboarding.Event{Action: onboarding.ActionSignUp}, onboarding.StateIdentity},
	}
	for _, s := range steps {
		tr, err := wz.Apply(ctx, id, s.ev)
		require.NoError(t, err, s.ev.Action)
		assert.Equal(t, s.want, tr.To)
	}

	v, err := f.sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StateIdentity, v.State)
	assert.Equal(t, "hi", v.AppLanguage.Code)

	tr, err := wz.Apply(ctx, id, onboarding.Event{Action: onboarding.ActionAdvance})
	assert.ErrorIs(t, err, onboarding.ErrIncompleteStep)
	assert.Equal(t, onboarding.StateIdentity, tr.To)
	require.NotNil(t, tr.Notice)

	_, err = wz.Apply(ctx, uuid.New(), onboarding.Event{Action: onboarding.ActionBack})
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestWizard_GoalsCommitsProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	f.seed(t, id, onboarding.StateGoals)
	wz := NewWizardUsecase(f.store, f.profiles, f.nav, f.locks, nil)

	tr, err := wz.Apply(ctx, id, onboarding.Event{Action: onboarding.ActionAdvance})
	require.NoError(t, err)
	assert.True(t, tr.Committed)
	assert.Equal(t, onboarding.StateMainTabs, tr.To)

	p, err := f.profiles.GetBySession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Maya", p.Data.FullName)

	v, err := f.sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Completed)
	assert.Equal(t, 100, v.Progress.Percentage)
}

type failingProfiles struct{}

func (failingProfiles) Save(context.Context, profile.Profile) error { return errors.New("db down") }
func (failingProfiles) GetBySession(context.Context, uuid.UUID) (profile.Profile, error) {
	return profile.Profile{}, profile.ErrNotFound
}

func TestWizard_FailedCommitStaysOnGoals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	f.seed(t, id, onboarding.StateGoals)
	wz := NewWizardUsecase(f.store, failingProfiles{}, f.nav, f.locks, nil)

	_, err := wz.Apply(ctx, id, onboarding.Event{Action: onboarding.ActionAdvance})
	assert.ErrorIs(t, err, ErrInternal)

	v, err := f.sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StateGoals, v.State)
	assert.False(t, v.Completed)
}

func TestOnboarding_DraftEditing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	ob := NewOnboardingUsecase(f.store, f.profiles, cat, f.locks)

	v, err := ob.Patch(ctx, id, onboarding.DraftPatch{FullName: ptr("Ravi"), PreferredLanguage: ptr("te")})
	require.NoError(t, err)
	assert.Equal(t, 20, v.Progress.Percentage)

	_, err = ob.Patch(ctx, id, onboarding.DraftPatch{CraftCategory: ptr("spaceships")})
	assert.Error(t, err)

	v, err = ob.Toggle(ctx, id, onboarding.FieldSelectedPlatforms, "etsy")
	require.NoError(t, err)
	assert.Equal(t, []string{"etsy"}, v.Draft.SelectedPlatforms)

	_, _, err = ob.Connect(ctx, id, "amazon")
	assert.ErrorIs(t, err, onboarding.ErrPlatformNotSelected)

	v, notice, err := ob.Connect(ctx, id, " etsy ")
	require.NoError(t, err)
	assert.Equal(t, []string{"etsy"}, v.Draft.ConnectedPlatforms)
	assert.Equal(t, "Connected!", notice.Title)

	res, err := ob.ValidateStep(ctx, id, onboarding.StepIdentity)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	res, err = ob.ValidateStep(ctx, id, onboarding.StepProfile)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	_, err = ob.ValidateStep(ctx, id, onboarding.Step(0))
	assert.ErrorIs(t, err, onboarding.ErrUnknownStep)

	p, err := ob.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Completed, "identity and presence")

	_, err = ob.Profile(ctx, id)
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestOnboarding_ConcurrentToggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	ob := NewOnboardingUsecase(f.store, f.profiles, cat, f.locks)

	ids := []string{"pottery", "jewelry", "textiles", "paintings"}
	var wg sync.WaitGroup
	for _, pt := range ids {
		wg.Add(1)
		go func(pt string) {
			defer wg.Done()
			_, err := ob.Toggle(ctx, id, onboarding.FieldProductTypes, pt)
			assert.NoError(t, err)
		}(pt)
	}
	wg.Wait()

	v, err := ob.Draft(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, v.Draft.ProductTypes)
}

type recorder struct {
	mu   sync.Mutex
	msgs []chat.Message
}

func (r *recorder) Publish(_ uuid.UUID, m chat.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestChat_SendWaitsForReply(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	pub := &recorder{}
	c := NewChatUsecase(f.store, f.replies, f.locks, pub, ChatOptions{Delay: 10 * time.Millisecond})

	res, err := c.Send(ctx, id, chat.Request{Text: "What PRICE should I set?"}, true)
	require.NoError(t, err)
	assert.True(t, res.User.IsUser)
	require.NotNil(t, res.Reply)
	assert.False(t, res.Reply.IsUser)
	assert.Contains(t, res.Reply.Text, "For pricing advice")

	res, err = c.Send(ctx, id, chat.Request{QuickAction: "photo_tips"}, true)
	require.NoError(t, err)
	assert.Equal(t, "photo_tips", res.User.Text)

	log, err := c.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, log, 5)
	assert.Equal(t, chat.Greeting, log[0].Text)
	assert.Equal(t, 4, pub.len())

	_, err = c.Send(ctx, id, chat.Request{Text: "   "}, true)
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
}

func TestChat_CancelledRequestDropsReply(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newFixture(t)
	id := f.start(t)
	c := NewChatUsecase(f.store, f.replies, f.locks, nil, ChatOptions{Delay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := c.Send(ctx, id, chat.Request{Text: "hello"}, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, res.Reply)

	log, err := c.History(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, log, 2, "greeting and the user message only")
}

func TestChat_EndCancelsPendingReply(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	c := NewChatUsecase(f.store, f.replies, f.locks, nil, ChatOptions{Delay: time.Hour})

	res, err := c.Send(ctx, id, chat.Request{Text: "write a description"}, false)
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Equal(t, 1, f.replies.Pending(id.String()))

	require.NoError(t, f.sessions.End(ctx, id))
	assert.Eventually(t, func() bool { return f.replies.Pending(id.String()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestChat_BackgroundReplyIsAppended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.start(t)
	pub := &recorder{}
	c := NewChatUsecase(f.store, f.replies, f.locks, pub, ChatOptions{Delay: time.Millisecond})

	_, err := c.Send(ctx, id, chat.Request{Text: "hi"}, false)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return pub.len() == 2 }, time.Second, 5*time.Millisecond)

	log, err := c.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Contains(t, log[2].Text, "That's interesting!")
}

func TestProducts_Flow(t *testing.T) {
	ctx := context.Background()
	uc := NewProductUsecase(repository.NewMemoryProductRepository(), cat)
	owner := uuid.New()

	v, err := uc.Create(ctx, owner, product.Patch{})
	require.NoError(t, err)
	assert.Equal(t, product.StatusDraft, v.Product.Status)
	assert.Empty(t, v.PhotoTip)
	assert.Len(t, v.Recommendations, 2)
	id := v.Product.ID

	_, err = uc.Publish(ctx, owner, id)
	assert.ErrorIs(t, err, product.ErrIncompleteProduct)

	for _, field := range []string{"title", "price"} {
		_, err = uc.ApplySuggestion(ctx, owner, id, field)
		require.NoError(t, err)
	}
	_, err = uc.Update(ctx, owner, id, product.Patch{Category: ptr("Pottery")})
	require.NoError(t, err)
	v, err = uc.AttachDemoImages(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, product.PhotoTip, v.PhotoTip)

	v, err = uc.ApplyRecommendation(ctx, owner, id, "trending_keywords")
	require.NoError(t, err)
	assert.Contains(t, v.Product.Tags, "#sustainable")

	v, err = uc.Publish(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, product.StatusPublished, v.Product.Status)

	list, err := uc.List(ctx, owner, "published")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = uc.List(ctx, owner, "draft")
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = uc.List(ctx, owner, "archived")
	assert.ErrorIs(t, err, product.ErrInvalidFilter)

	_, err = uc.Get(ctx, uuid.New(), id)
	assert.ErrorIs(t, err, product.ErrNotFound)
}
