package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/persistence"
	"github.com/asaidimu/go-docstore/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDriver(t *testing.T) (*Driver, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docstore.db")
	d, err := Open(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}

func mustTable(t *testing.T, d *Driver, name string) persistence.Table {
	t.Helper()
	tbl, _, err := d.Table(name)
	require.NoError(t, err)
	return tbl
}

func collect(t *testing.T, seq func(func(core.Record, error) bool)) []core.Record {
	t.Helper()
	var out []core.Record
	for r, err := range seq {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func ids(records []core.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestDriver_Tables(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDriver(t)

	_, ok := d.Lookup("users")
	assert.False(t, ok)

	users, created, err := d.Table("users")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "users", users.Name())

	_, created, err = d.Table("users")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = d.Table("groups")
	require.NoError(t, err)
	names, err := d.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "groups"}, names)

	_, ok = d.Lookup("groups")
	assert.True(t, ok)
}

func TestDriver_TableRegistrationFailure(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDriver(t)
	s, err := persistence.New(d, &persistence.Options{DisableEvents: true})
	require.NoError(t, err)
	require.NoError(t, d.db.Close())

	tbl, created, err := d.Table("late")
	assert.Error(t, err)
	assert.Nil(t, tbl)
	assert.False(t, created)
	assert.NotContains(t, d.known, "late")

	err = s.Collection("late").Doc("x1").Create(ctx, core.Document{"n": 1})
	assert.ErrorContains(t, err, "failed to create collection late")
	assert.NotContains(t, d.known, "late")
}

func TestTable_PointOperations(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDriver(t)
	users := mustTable(t, d, "users")

	require.NoError(t, users.Insert(ctx, "u1", core.Document{
		"name":   "Ada",
		"age":    36,
		"score":  9.5,
		"admin":  true,
		"tags":   []any{"math", "engines"},
		"avatar": nil,
		"meta":   map[string]any{"visits": 3},
	}))

	got, ok, err := users.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.Document{
		"name":   "Ada",
		"age":    int64(36),
		"score":  9.5,
		"admin":  true,
		"tags":   []any{"math", "engines"},
		"avatar": nil,
		"meta":   map[string]any{"visits": int64(3)},
	}, got)

	_, ok, err = users.Get(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	err = users.Insert(ctx, "u1", core.Document{"name": "Grace"})
	assert.ErrorIs(t, err, core.ErrDuplicateID)
	got, _, _ = users.Get(ctx, "u1")
	assert.Equal(t, "Ada", got["name"])

	merged, err := users.Merge(ctx, "u1", core.Document{"age": 37})
	require.NoError(t, err)
	assert.Equal(t, int64(37), merged["age"])
	assert.Equal(t, "Ada", merged["name"])

	_, err = users.Merge(ctx, "u9", core.Document{"age": 1})
	assert.ErrorIs(t, err, core.ErrNotFound)

	existed, err := users.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = users.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestTable_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDriver(t)
	photos := mustTable(t, d, "photos")
	other := mustTable(t, d, "other")

	for _, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, photos.Insert(ctx, id, core.Document{"n": id}))
	}
	require.NoError(t, other.Insert(ctx, "p1", core.Document{}))

	require.NoError(t, photos.Put(ctx, "p1", core.Document{"n": "replaced"}))
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(collect(t, photos.All(ctx))))

	_, err := photos.Delete(ctx, "p2")
	require.NoError(t, err)
	require.NoError(t, photos.Put(ctx, "p2", core.Document{}))
	assert.Equal(t, []string{"p1", "p3", "p2"}, ids(collect(t, photos.All(ctx))))
	assert.Equal(t, []string{"p1"}, ids(collect(t, other.All(ctx))))
}

func TestTable_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "docstore.db")

	d, err := Open(ctx, path, nil)
	require.NoError(t, err)
	todos := mustTable(t, d, "todos")
	require.NoError(t, todos.Insert(ctx, "t1", core.Document{"title": "pack"}))
	require.NoError(t, d.Close())

	d, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer d.Close()

	found, ok := d.Lookup("todos")
	require.True(t, ok)
	got, ok, err := found.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pack", got["title"])
}

func TestStore_OverSQLite(t *testing.T) {
	ctx := context.Background()
	d, _ := openTestDriver(t)
	s, err := persistence.New(d, &persistence.Options{DisableEvents: true})
	require.NoError(t, err)

	photos := s.Collection("photos")
	require.NoError(t, photos.Doc("p1").Create(ctx, core.Document{"groupId": "g1", "likes": 3, "flag": true}))
	require.NoError(t, photos.Doc("p2").Create(ctx, core.Document{"groupId": "g1", "likes": 10, "flag": 1}))
	require.NoError(t, photos.Doc("p3").Create(ctx, core.Document{"groupId": "g2", "likes": 3.0, "flag": "true"}))
	require.NoError(t, photos.Doc("p4").Create(ctx, core.Document{"groupId": "g1"}))

	tests := []struct {
		name  string
		field string
		value any
		want  []string
	}{
		{"string", "groupId", "g1", []string{"p1", "p2", "p4"}},
		{"integer matches float column", "likes", 3.0, []string{"p1", "p3"}},
		{"integer", "likes", 10, []string{"p2"}},
		{"bool does not match number", "flag", true, []string{"p1"}},
		{"number does not match bool", "flag", 1, []string{"p2"}},
		{"string does not match bool", "flag", "true", []string{"p3"}},
		{"no match", "groupId", "g9", []string{}},
		{"unknown field", "albumId", "a1", []string{}},
		{"non scalar value", "tags", []any{"x"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := photos.Where(tt.field, query.OperatorEqual, tt.value)
			require.NoError(t, err)
			snap, err := s.Run(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap.IDs())
		})
	}

	t.Run("sort and limit", func(t *testing.T) {
		q, err := photos.OrderBy("likes", query.SortDirectionDesc)
		require.NoError(t, err)
		q, err = q.Limit(3)
		require.NoError(t, err)
		snap, err := s.Run(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"p4", "p2", "p1"}, snap.IDs())
	})

	t.Run("unknown collection", func(t *testing.T) {
		snap, err := s.Run(ctx, query.New("ghosts"))
		require.NoError(t, err)
		assert.True(t, snap.IsEmpty())
	})
}

func TestBuildScan(t *testing.T) {
	sqlQuery, params := buildScan("photos", []query.Predicate{
		{Field: "groupId", Operator: query.OperatorEqual, Value: "g1"},
		{Field: `bad"name`, Operator: query.OperatorEqual, Value: "x"},
		{Field: "tags", Operator: query.OperatorEqual, Value: []any{"a"}},
		{Field: "likes", Operator: query.OperatorEqual, Value: 3.0},
	})

	assert.Equal(t,
		"SELECT id, data FROM documents WHERE collection = ? AND json_extract(data, ?) = ? AND json_extract(data, ?) = ? ORDER BY seq",
		sqlQuery)
	assert.Equal(t, []any{"photos", `$."groupId"`, "g1", `$."likes"`, int64(3)}, params)
}
