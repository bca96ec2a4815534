package credentials

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

func TestStore_LoadEmpty(t *testing.T) {
	s := NewStore(setupDB(t))

	c, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	ctx := context.Background()
	want := models.Credentials{AccessToken: "tok", Client: "cli", UID: "a@b.c", Expiry: "1700000000"}

	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, Key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access-token":"tok","client":"cli","uid":"a@b.c","expiry":"1700000000"}`, string(raw))
}

func TestStore_SaveReplacesWholeRecord(t *testing.T) {
	s := NewStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Credentials{AccessToken: "a", Client: "c1", UID: "u", Expiry: "1"}))
	require.NoError(t, s.Save(ctx, models.Credentials{AccessToken: "b"}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{AccessToken: "b"}, *got)
}

func TestStore_ClearRemovesRecordAndLegacyKeys(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	repo := metadata.NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Credentials{AccessToken: "tok"}))
	for _, k := range []string{"access-token", "uid", "client", "expiry", "unrelated"} {
		require.NoError(t, repo.Set(ctx, k, []byte("x")))
	}

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	m, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"unrelated": []byte("x")}, m)

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_PurgeRemovesEveryKey(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	repo := metadata.NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Credentials{AccessToken: "tok"}))
	require.NoError(t, repo.Set(ctx, "uid", []byte("x")))
	require.NoError(t, repo.Set(ctx, "unrelated", []byte("y")))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	m, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	n, err = s.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_LoadCorruptRecord(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(ctx, Key, []byte("{not json")))

	c, err := NewStore(db).Load(ctx)
	require.ErrorIs(t, err, ErrCorruptRecord)
	assert.Nil(t, c)
}

func TestStore_LoadRecordWithoutTokenIsAbsent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(ctx, Key, []byte(`{"uid":"a@b.c"}`)))

	c, err := NewStore(db).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestStore_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	s := NewStore(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := s.Load(ctx)
	require.ErrorContains(t, err, "load credentials")
	require.ErrorContains(t, s.Save(ctx, models.Credentials{AccessToken: "t"}), "save credentials")
	require.ErrorContains(t, s.Clear(ctx), "clear credentials")
	_, err = s.Purge(ctx)
	require.ErrorContains(t, err, "purge local data")
}
