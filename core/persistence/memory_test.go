package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/asaidimu/go-docstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func collect(t *testing.T, table Table) []core.Record {
	t.Helper()
	var out []core.Record
	for r, err := range table.All(context.Background()) {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func recordIDs(records []core.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestMemoryTable_InsertThenGet(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("users")

	fields := core.Document{"name": "Ada", "tags": []any{"admin"}}
	require.NoError(t, table.Insert(ctx, "u1", fields))

	got, ok, err := table.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fields, got)

	got["name"] = "changed"
	got["tags"].([]any)[0] = "changed"
	again, _, _ := table.Get(ctx, "u1")
	assert.Equal(t, "Ada", again["name"])
	assert.Equal(t, []any{"admin"}, again["tags"])

	fields["name"] = "caller mutation"
	again, _, _ = table.Get(ctx, "u1")
	assert.Equal(t, "Ada", again["name"])
}

func TestMemoryTable_GetMissing(t *testing.T) {
	doc, ok, err := NewMemoryTable("users").Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestMemoryTable_InsertDuplicate(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("users")
	require.NoError(t, table.Insert(ctx, "u1", core.Document{"name": "Ada"}))

	err := table.Insert(ctx, "u1", core.Document{"name": "Grace"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateID))
	var dup *core.DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "users", dup.Collection)
	assert.Equal(t, "u1", dup.ID)

	got, _, _ := table.Get(ctx, "u1")
	assert.Equal(t, core.Document{"name": "Ada"}, got)
	assert.Equal(t, 1, table.Len())
}

func TestMemoryTable_PutKeepsPosition(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("groups")
	require.NoError(t, table.Put(ctx, "g1", core.Document{"name": "one"}))
	require.NoError(t, table.Put(ctx, "g2", core.Document{"name": "two"}))
	require.NoError(t, table.Put(ctx, "g1", core.Document{"title": "uno"}))

	records := collect(t, table)
	assert.Equal(t, []string{"g1", "g2"}, recordIDs(records))
	assert.Equal(t, core.Document{"title": "uno"}, records[0].Data)
}

func TestMemoryTable_Merge(t *testing.T) {
	ctx := context.Background()

	t.Run("merges top-level fields", func(t *testing.T) {
		table := NewMemoryTable("photos")
		require.NoError(t, table.Insert(ctx, "p1", core.Document{"likes": 1, "meta": map[string]any{"w": 10, "h": 5}}))

		merged, err := table.Merge(ctx, "p1", core.Document{"likes": 5, "meta": map[string]any{"w": 20}})
		require.NoError(t, err)
		assert.Equal(t, core.Document{"likes": 5, "meta": map[string]any{"w": 20}}, merged)

		got, _, _ := table.Get(ctx, "p1")
		assert.Equal(t, merged, got)
	})

	t.Run("missing record", func(t *testing.T) {
		table := NewMemoryTable("photos")
		require.NoError(t, table.Insert(ctx, "p2", core.Document{"likes": 1}))

		_, err := table.Merge(ctx, "p1", core.Document{"likes": 5})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, []string{"p2"}, recordIDs(collect(t, table)))
	})
}

func TestMemoryTable_Delete(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("todos")
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, table.Insert(ctx, id, core.Document{"id": id}))
	}

	existed, err := table.Delete(ctx, "b")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = table.Delete(ctx, "b")
	require.NoError(t, err)
	assert.False(t, existed)

	assert.Equal(t, []string{"a", "c"}, recordIDs(collect(t, table)))

	_, ok, _ := table.Get(ctx, "c")
	assert.True(t, ok)

	require.NoError(t, table.Insert(ctx, "b", core.Document{}))
	assert.Equal(t, []string{"a", "c", "b"}, recordIDs(collect(t, table)))
}

func TestMemoryTable_AllReflectsCallTime(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("events")
	require.NoError(t, table.Insert(ctx, "e1", core.Document{}))

	seq := table.All(ctx)
	require.NoError(t, table.Insert(ctx, "e2", core.Document{}))

	var first []string
	for r, err := range seq {
		require.NoError(t, err)
		first = append(first, r.ID)
	}
	assert.Equal(t, []string{"e1", "e2"}, first)

	require.NoError(t, table.Insert(ctx, "e3", core.Document{}))
	assert.Equal(t, []string{"e1", "e2", "e3"}, recordIDs(collect(t, table)))
}

func TestMemoryTable_AllStopsEarly(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("events")
	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, table.Insert(ctx, id, core.Document{}))
	}

	var seen []string
	for r := range table.All(ctx) {
		seen = append(seen, r.ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"e1", "e2"}, seen)
}

func TestMemoryTable_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	table := NewMemoryTable("likes")
	require.NoError(t, table.Insert(ctx, "p1", core.Document{"likes": 0}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := table.Merge(ctx, "p1", core.Document{"last": i})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			for r, err := range table.All(ctx) {
				assert.NoError(t, err)
				assert.Equal(t, "p1", r.ID)
			}
		}()
	}
	wg.Wait()

	got, ok, _ := table.Get(ctx, "p1")
	require.True(t, ok)
	assert.Contains(t, got, "last")
}

func TestMemoryDriver(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDriver(zap.NewNop())

	_, ok := d.Lookup("users")
	assert.False(t, ok)

	users, created, err := d.Table("users")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "users", users.Name())

	again, created, err := d.Table("users")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, users, again)

	_, _, err = d.Table("groups")
	require.NoError(t, err)
	names, err := d.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "groups"}, names)

	found, ok := d.Lookup("users")
	require.True(t, ok)
	assert.Same(t, users, found)

	require.NoError(t, d.Close())
	names, _ = d.Tables(ctx)
	assert.Empty(t, names)
}
