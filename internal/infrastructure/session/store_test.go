package session

import (
	"context"
	"testing"
	"time"

	"kala/internal/domain/chat"
	"kala/internal/domain/onboarding"
	"kala/internal/domain/session"
	"kala/internal/infrastructure/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newSession() session.Session {
	w := onboarding.Wizard{State: onboarding.StateIdentity}
	w.Draft.FullName = "Ravi"
	w.Draft.ProductTypes = []string{"sarees"}
	return session.New(w, t0)
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(cache.New(client, nil), ttl), mr
}

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)
	sess := newSession()

	require.NoError(t, store.Create(ctx, sess))
	assert.ErrorIs(t, store.Create(ctx, sess), session.ErrExists)
	assert.True(t, mr.Exists(Key(sess.ID)))
	assert.Equal(t, time.Hour, mr.TTL(Key(sess.ID)))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Wizard.Draft.FullName)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, chat.Greeting, got.Messages[0].Text)

	mr.FastForward(30 * time.Minute)
	got.Wizard.State = onboarding.StateProfile
	require.NoError(t, store.Save(ctx, got))
	assert.Equal(t, time.Hour, mr.TTL(Key(sess.ID)))

	got, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StateProfile, got.Wizard.State)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, sess.ID), session.ErrNotFound)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)
	sess := newSession()
	require.NoError(t, store.Create(ctx, sess))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, sess), session.ErrNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Get(ctx, uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := t0
	store.now = func() time.Time { return now }

	sess := newSession()
	require.NoError(t, store.Create(ctx, sess))
	assert.ErrorIs(t, store.Create(ctx, sess), session.ErrExists)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	got.Wizard.Draft.ProductTypes[0] = "changed"
	got.Messages[0].Text = "changed"

	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sarees"}, again.Wizard.Draft.ProductTypes)
	assert.Equal(t, chat.Greeting, again.Messages[0].Text)

	now = now.Add(50 * time.Minute)
	require.NoError(t, store.Save(ctx, again))
	now = now.Add(50 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	require.NoError(t, err, "save refreshes expiry")

	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.ErrorIs(t, store.Delete(ctx, sess.ID), session.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, sess), session.ErrNotFound)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := t0
	store.now = func() time.Time { return now }

	old := newSession()
	require.NoError(t, store.Create(ctx, old))
	now = now.Add(30 * time.Second)
	fresh := newSession()
	require.NoError(t, store.Create(ctx, fresh))

	now = now.Add(45 * time.Second)
	_, err := store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	// an expired id may be created again
	now = now.Add(time.Hour)
	require.NoError(t, store.Create(ctx, fresh))
}

func TestMemoryStore_StartSweeper(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, err := store.StartSweeper("not a schedule", nil)
	assert.Error(t, err)

	c, err := store.StartSweeper("@every 1h", nil)
	require.NoError(t, err)
	<-c.Stop().Done()
}
