package blob

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "inventory")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "inventory", []byte(`{"a":1}`)))
	require.NoError(t, s.Save(ctx, "colors", []byte(`[]`)))

	got, err := s.Load(ctx, "inventory")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Save(ctx, "inventory", []byte(`{"a":2}`)))
	got, err = s.Load(ctx, "inventory")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got), "save overwrites")

	got, err = s.Load(ctx, "colors")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	s := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, s.Save(context.Background(), "x", data))
	data[0] = 'z'

	got, err := s.Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLStore_SQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "blobs.db")
	s, err := OpenSQL(context.Background(), DialectSQLite, dsn)
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)

	// Migrate is idempotent.
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "blobs.db")

	s, err := OpenSQL(ctx, DialectSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "filter_options", []byte(`{"foco":["Monofocal"]}`)))
	require.NoError(t, s.Close())

	s, err = OpenSQL(ctx, DialectSQLite, dsn)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx, "filter_options")
	require.NoError(t, err)
	assert.Equal(t, `{"foco":["Monofocal"]}`, string(got))
}

func TestSQLStore_Bind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.bind("VALUES (?, ?, ?)"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "VALUES (?, ?)", lite.bind("VALUES (?, ?)"))
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadger("")
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, Options{Backend: BackendPostgres})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: BackendGCS})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "s3"})
	assert.Error(t, err)
}
