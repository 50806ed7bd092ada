package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/pkg/config"
)

func sampleIdentity() Identity {
	return Identity{
		Token:     "tok",
		User:      models.User{ID: 42, FirstName: "Lea", LastName: "Martin", Role: models.RoleTeacher},
		TeacherID: 4,
		SectorIDs: []int64{2, 3},
	}
}

// exerciseStore runs the behaviour every store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "sid-1", sampleIdentity(), time.Hour))
	loaded, err := store.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), loaded.User.ID)
	assert.Equal(t, []int64{2, 3}, loaded.SectorIDs)
	assert.Equal(t, int64(4), loaded.TeacherID)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Load(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, "sid-1"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiresAndSweeps(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", sampleIdentity(), time.Minute))
	now = now.Add(2 * time.Minute)
	_, err := store.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "new", sampleIdentity(), time.Minute))
	assert.Equal(t, 1, store.Len())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "portal:session:")
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), "sid-2", sampleIdentity(), time.Minute))
	assert.True(t, mr.Exists("portal:session:sid-2"))
	mr.FastForward(2 * time.Minute)
	_, err := store.Load(context.Background(), "sid-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltStore(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestBoltStoreExpiry(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", sampleIdentity(), time.Minute))
	now = now.Add(time.Hour)
	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStoreSelectsDriver(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{Store: config.SessionStoreMemory}}
	store, err := NewStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	cfg.Session = config.SessionConfig{Store: config.SessionStoreBolt, BoltPath: filepath.Join(t.TempDir(), "s.db")}
	store, err = NewStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, store)
	require.NoError(t, store.Close())

	mr := miniredis.RunT(t)
	cfg.Session = config.SessionConfig{Store: config.SessionStoreRedis}
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr.Port())}
	store, err = NewStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)
	require.NoError(t, store.Close())

	cfg.Session.Store = "file"
	_, err = NewStore(cfg)
	assert.Error(t, err)
}
