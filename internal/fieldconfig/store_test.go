package fieldconfig

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestStoreSeedsDefaults(t *testing.T) {
	store := newTestStore(t)

	fields, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 38)
	assert.Equal(t, "Level", fields[0].Name)
	assert.Equal(t, "Our Comments", fields[len(fields)-1].Name)
}

func TestStoreUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("new field appends to the end", func(t *testing.T) {
		err := store.Upsert(ctx, Field{Name: "Supervisor sign-off", Type: TypeCheckbox, Required: true})
		require.NoError(t, err)

		fields, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, fields, 39)
		assert.Equal(t, "Supervisor sign-off", fields[len(fields)-1].Name)
	})

	t.Run("existing field keeps its position", func(t *testing.T) {
		err := store.Upsert(ctx, Field{Name: "Level", Type: TypeDropdown, Options: []string{"Level 1", "Level 2"}, Required: true})
		require.NoError(t, err)

		fields, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Level", fields[0].Name)
		assert.Equal(t, []string{"Level 1", "Level 2"}, fields[0].Options)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		err := store.Upsert(ctx, Field{Name: "Bad", Type: "slider"})
		assert.Error(t, err)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		err := store.Upsert(ctx, Field{Type: TypeText})
		assert.Error(t, err)
	})
}

func TestStoreGetAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	field, err := store.Get(ctx, "Camera")
	require.NoError(t, err)
	assert.Equal(t, TypeDropdown, field.Type)
	assert.Equal(t, 5, field.Scoring["Working"])

	_, err = store.Get(ctx, "No Such Field")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Delete(ctx, "Camera"))
	_, err = store.Get(ctx, "Camera")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.ErrorIs(t, store.Delete(ctx, "Camera"), sql.ErrNoRows)
}

func TestStoreReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "Camera"))
	require.NoError(t, store.Upsert(ctx, Field{Name: "Extra", Type: TypeText}))

	require.NoError(t, store.Reset(ctx))

	fields, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, fields, 38)
	_, err = store.Get(ctx, "Camera")
	assert.NoError(t, err)
}

func TestStoreExportImportRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Field{Name: "Supervisor sign-off", Type: TypeCheckbox}))

	data, err := store.ExportJSON(ctx)
	require.NoError(t, err)

	other := newTestStore(t)
	require.NoError(t, other.ImportJSON(ctx, data))

	got, err := other.List(ctx)
	require.NoError(t, err)
	want, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoreImportRejectsBadPayloads(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{"not": "an array"`},
		{name: "wrong shape", payload: `{"Level": {"type": "dropdown"}}`},
		{name: "empty catalog", payload: `[]`},
		{name: "nameless field", payload: `[{"type": "text", "required": true}]`},
		{name: "unknown type", payload: `[{"name": "X", "type": "slider"}]`},
		{name: "duplicate field", payload: `[{"name": "X", "type": "text"}, {"name": "X", "type": "text"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.ImportJSON(ctx, []byte(tt.payload)))
		})
	}

	// A rejected import must not disturb the existing catalog.
	fields, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fields, 38)
}
