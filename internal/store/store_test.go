package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/unikit/internal/config"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_KV(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", []byte(`"v1"`)))
	require.NoError(t, s.Put(ctx, "k", []byte(`"v2"`)))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, KeyMyCGPA, []byte("8.5")))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, KeyMyCGPA)
	require.NoError(t, err)
	assert.Equal(t, "8.5", string(got))
}

func TestSQLite_Calculations(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	first, err := s.AddCalculation(ctx, 8.67, 6)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.AddCalculation(ctx, 9.11, 9)
	require.NoError(t, err)

	calcs, err := s.ListCalculations(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, calcs, 2)
	assert.Equal(t, second.ID, calcs[0].ID)
	assert.Equal(t, first.ID, calcs[1].ID)
	assert.Equal(t, 9.11, calcs[0].CGPA)
	assert.Equal(t, 9.0, calcs[0].Credits)

	page, err := s.ListCalculations(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	var v map[string]float64
	found, err := GetJSON(ctx, s, KeyGradePoints, &v)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, PutJSON(ctx, s, KeyGradePoints, map[string]float64{"A": 9}))
	found, err = GetJSON(ctx, s, KeyGradePoints, &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 9.0, v["A"])

	require.NoError(t, s.Put(ctx, KeyRoster, []byte("{broken")))
	_, err = GetJSON(ctx, s, KeyRoster, &v)
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, s.Close())
	_, err = GetJSON(ctx, s, KeyGradePoints, &v)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "unikit.db")
	b, err := Open(config.StorageConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer b.Close()
	assert.IsType(t, &SQLite{}, b)

	_, err = Open(config.StorageConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestRedis_Keys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	r := NewRedisClient(client, "")
	assert.Equal(t, "unikit:kv:ledger", r.kvKey(KeyLedger))
	assert.Equal(t, "unikit:calculations", r.historyKey())

	r = NewRedisClient(client, "campus")
	assert.Equal(t, "campus:kv:roster", r.kvKey(KeyRoster))
}
