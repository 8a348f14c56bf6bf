package tokenstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

var t0 = time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by a store under test
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

// fakeRedis keeps values in memory and remembers the last expiration passed to Set
type fakeRedis struct {
	data    map[string]string
	lastTTL time.Duration
	getErr  error
	setErr  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.lastTTL = expiration
	return redis.NewStatusResult("OK", nil)
}

// fakeDB emulates the single-row token table
type fakeDB struct {
	rows    map[string]domain.SessionToken
	execErr error
	readErr error
	execs   []string
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string]domain.SessionToken{}}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if sql == upsertTokenSQL {
		f.rows[args[0].(string)] = domain.SessionToken{Value: args[1].(string), ObtainedAt: args[2].(time.Time)}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if f.readErr != nil {
		return fakeRow{err: f.readErr}
	}
	token, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{token: token}
}

type fakeRow struct {
	token domain.SessionToken
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.token.Value
	*dest[1].(*time.Time) = r.token.ObtainedAt
	return nil
}

type storeFactory func(t *testing.T, clock *testClock) ports.TokenStore

func allStores() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T, clock *testClock) ports.TokenStore {
			return NewFileStore(filepath.Join(t.TempDir(), "token.json"), zap.NewNop(), WithClock(clock.Now))
		},
		"redis": func(t *testing.T, clock *testClock) ports.TokenStore {
			return NewRedisStore(newFakeRedis(), "", zap.NewNop(), WithClock(clock.Now))
		},
		"postgres": func(t *testing.T, clock *testClock) ports.TokenStore {
			return NewPostgresStore(newFakeDB(), "", zap.NewNop(), WithClock(clock.Now))
		},
	}
}

func TestStoreEmpty(t *testing.T) {
	for name, factory := range allStores() {
		t.Run(name, func(t *testing.T) {
			store := factory(t, &testClock{now: t0})

			token, ok := store.Get(context.Background())
			assert.False(t, ok)
			assert.Nil(t, token)
		})
	}
}

func TestStorePutThenGet(t *testing.T) {
	for name, factory := range allStores() {
		t.Run(name, func(t *testing.T) {
			clock := &testClock{now: t0}
			store := factory(t, clock)

			put, err := store.Put(context.Background(), "sess-1")
			require.NoError(t, err)
			assert.Equal(t, "sess-1", put.Value)
			assert.True(t, put.ObtainedAt.Equal(t0))

			got, ok := store.Get(context.Background())
			require.True(t, ok)
			assert.Equal(t, "sess-1", got.Value)
			assert.True(t, got.ObtainedAt.Equal(t0))
		})
	}
}

func TestStoreTTLBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"just obtained", 0, true},
		{"one second before expiry", domain.DefaultTokenTTL - time.Second, true},
		{"exactly at expiry", domain.DefaultTokenTTL, false},
		{"long expired", 2 * time.Hour, false},
		{"clock went backwards", -time.Minute, false},
	}

	for name, factory := range allStores() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				clock := &testClock{now: t0}
				store := factory(t, clock)

				_, err := store.Put(context.Background(), "sess-1")
				require.NoError(t, err)

				clock.now = t0.Add(tt.elapsed)
				_, ok := store.Get(context.Background())
				assert.Equal(t, tt.want, ok)
			})
		}
	}
}

func TestStoreCustomTTL(t *testing.T) {
	clock := &testClock{now: t0}
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"), zap.NewNop(),
		WithClock(clock.Now), WithTTL(5*time.Minute))

	_, err := store.Put(context.Background(), "sess-1")
	require.NoError(t, err)

	clock.now = t0.Add(4 * time.Minute)
	_, ok := store.Get(context.Background())
	assert.True(t, ok)

	clock.now = t0.Add(5 * time.Minute)
	_, ok = store.Get(context.Background())
	assert.False(t, ok)
}

func TestStorePutReplaces(t *testing.T) {
	for name, factory := range allStores() {
		t.Run(name, func(t *testing.T) {
			clock := &testClock{now: t0}
			store := factory(t, clock)

			_, err := store.Put(context.Background(), "old")
			require.NoError(t, err)

			clock.now = t0.Add(40 * time.Minute)
			_, err = store.Put(context.Background(), "new")
			require.NoError(t, err)

			got, ok := store.Get(context.Background())
			require.True(t, ok)
			assert.Equal(t, "new", got.Value)
		})
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewFileStore(path, zap.NewNop(), WithClock((&testClock{now: t0}).Now))

	token, ok := store.Get(context.Background())
	assert.False(t, ok)
	assert.Nil(t, token)
}

func TestFileStoreWritesPrivateFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	path := filepath.Join(dir, "token.json")
	store := NewFileStore(path, zap.NewNop())

	_, err := store.Put(context.Background(), "sess-1")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value":"sess-1"`)
	assert.Contains(t, string(data), `"obtained_at"`)
}

func TestFileStoreSharedBetweenInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	clock := &testClock{now: t0}

	writer := NewFileStore(path, zap.NewNop(), WithClock(clock.Now))
	reader := NewFileStore(path, zap.NewNop(), WithClock(clock.Now))

	_, err := writer.Put(context.Background(), "shared")
	require.NoError(t, err)

	got, ok := reader.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "shared", got.Value)
}

func TestFileStorePutFailure(t *testing.T) {
	// a regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	store := NewFileStore(filepath.Join(blocker, "token.json"), zap.NewNop())

	_, err := store.Put(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	t.Run("uses ttl as key expiry", func(t *testing.T) {
		client := newFakeRedis()
		store := NewRedisStore(client, "custom:key", zap.NewNop(), WithTTL(10*time.Minute))

		_, err := store.Put(context.Background(), "sess-1")
		require.NoError(t, err)

		assert.Equal(t, 10*time.Minute, client.lastTTL)
		assert.Contains(t, client.data, "custom:key")
	})

	t.Run("read error is a miss", func(t *testing.T) {
		client := newFakeRedis()
		client.getErr = errors.New("connection reset")
		store := NewRedisStore(client, "", zap.NewNop())

		_, ok := store.Get(context.Background())
		assert.False(t, ok)
	})

	t.Run("corrupt payload is a miss", func(t *testing.T) {
		client := newFakeRedis()
		client.data[DefaultRedisKey] = "garbage"
		store := NewRedisStore(client, "", zap.NewNop())

		_, ok := store.Get(context.Background())
		assert.False(t, ok)
	})

	t.Run("write error", func(t *testing.T) {
		client := newFakeRedis()
		client.setErr = errors.New("READONLY")
		store := NewRedisStore(client, "", zap.NewNop())

		_, err := store.Put(context.Background(), "sess-1")
		assert.Error(t, err)
	})
}

func TestPostgresStore(t *testing.T) {
	t.Run("schema", func(t *testing.T) {
		db := newFakeDB()
		require.NoError(t, EnsureTokenSchema(context.Background(), db))
		assert.Equal(t, []string{TokenSchema}, db.execs)
	})

	t.Run("schema error", func(t *testing.T) {
		db := newFakeDB()
		db.execErr = errors.New("permission denied")
		assert.Error(t, EnsureTokenSchema(context.Background(), db))
	})

	t.Run("read error is a miss", func(t *testing.T) {
		db := newFakeDB()
		db.readErr = errors.New("connection refused")
		store := NewPostgresStore(db, "", zap.NewNop())

		_, ok := store.Get(context.Background())
		assert.False(t, ok)
	})

	t.Run("rows are keyed by name", func(t *testing.T) {
		db := newFakeDB()
		clock := &testClock{now: t0}
		a := NewPostgresStore(db, "a", zap.NewNop(), WithClock(clock.Now))
		b := NewPostgresStore(db, "b", zap.NewNop(), WithClock(clock.Now))

		_, err := a.Put(context.Background(), "token-a")
		require.NoError(t, err)

		_, ok := b.Get(context.Background())
		assert.False(t, ok)

		got, ok := a.Get(context.Background())
		require.True(t, ok)
		assert.Equal(t, "token-a", got.Value)
	})

	t.Run("write error", func(t *testing.T) {
		db := newFakeDB()
		db.execErr = errors.New("disk full")
		store := NewPostgresStore(db, "", zap.NewNop())

		_, err := store.Put(context.Background(), "sess-1")
		assert.Error(t, err)
	})
}
