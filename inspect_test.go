package litorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/schema"
)

type inspectingAdapter struct {
	*fakeAdapter
	columns map[string][]adapter.ColumnInfo
}

func (a *inspectingAdapter) Tables(context.Context) ([]string, error) {
	var out []string
	for t := range a.columns {
		out = append(out, t)
	}
	return out, nil
}

func (a *inspectingAdapter) Columns(_ context.Context, table string) ([]adapter.ColumnInfo, error) {
	return a.columns[table], nil
}

func TestCheckTables(t *testing.T) {
	ia := &inspectingAdapter{
		fakeAdapter: newFakeAdapter(),
		columns: map[string][]adapter.ColumnInfo{
			"users": {
				{Name: "id", Type: "integer", Primary: true},
				{Name: "user_name", Type: "text"},
				{Name: "legacy_flag", Type: "boolean", Nullable: true},
			},
			"posts": {
				{Name: "id", Type: "integer", Primary: true},
			},
		},
	}

	conn := NewConnection(ia, adapter.Config{})
	require.NoError(t, conn.RegisterModel(usersMeta()))
	require.NoError(t, conn.RegisterModel(schema.MustNew("Post", "posts",
		schema.Column("id", schema.TypeNumber, schema.PrimaryKey()))))
	require.NoError(t, conn.RegisterModel(schema.MustNew("Tag", "tags",
		schema.Column("label", schema.TypeString))))

	diffs, err := conn.CheckTables(context.Background())
	require.NoError(t, err)
	require.Len(t, diffs, 3)

	// Models are sorted by name.
	post, tag, user := diffs[0], diffs[1], diffs[2]

	assert.True(t, post.InSync())

	assert.Equal(t, "tags", tag.Table)
	assert.False(t, tag.Exists)
	assert.False(t, tag.InSync())

	assert.True(t, user.Exists)
	assert.Equal(t, []string{"email"}, user.Missing)
	assert.Equal(t, []string{"legacy_flag"}, user.Extra)
	assert.False(t, user.InSync())
}

func TestCheckTablesWithoutInspector(t *testing.T) {
	conn := NewConnection(newFakeAdapter(), adapter.Config{})
	_, err := conn.CheckTables(context.Background())
	require.ErrorIs(t, err, ErrInspectUnsupported)
}
