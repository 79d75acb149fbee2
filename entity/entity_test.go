package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/litorm/schema"
)

var people = schema.MustNew("Person", "people",
	schema.Column("id", schema.TypeNumber, schema.PrimaryKey()),
	schema.Column("name", schema.TypeString),
	schema.Column("age", schema.TypeNumber),
	schema.Column("tags", schema.TypeArray),
	schema.Column("createdAt", schema.TypeDate, schema.Name("created_at")),
)

func TestNewRejectsUnknownKeys(t *testing.T) {
	_, err := New(people, Record{"id": 1, "nickname": "x"})
	require.ErrorIs(t, err, ErrUnknownColumn)

	_, err = New(nil, Record{})
	require.ErrorIs(t, err, schema.ErrMissingMetadata)
}

func TestNewStartsClean(t *testing.T) {
	e := MustNew(people, Record{"id": 1, "name": "Ada", "age": 30})
	assert.False(t, e.HasChanges())
	assert.Empty(t, e.Changes())
}

func TestChanges(t *testing.T) {
	e := MustNew(people, Record{"id": 1, "name": "Ada", "age": 30})

	require.NoError(t, e.Set("age", 31))
	assert.Equal(t, Record{"age": 31}, e.Changes())
	assert.True(t, e.HasChanges())

	// Idempotent without mutation.
	assert.Equal(t, e.Changes(), e.Changes())

	require.NoError(t, e.Set("age", 30))
	assert.False(t, e.HasChanges(), "restoring the original value clears the change")
}

func TestChangesNewlyAssigned(t *testing.T) {
	e := MustNew(people, Record{"id": 1})
	require.NoError(t, e.Set("name", nil))
	assert.Equal(t, Record{"name": nil}, e.Changes(), "unset to NULL is a change")
}

func TestSetUnknownProperty(t *testing.T) {
	e := MustNew(people, nil)
	require.ErrorIs(t, e.Set("nickname", "x"), ErrUnknownColumn)
}

func TestSyncOriginalValues(t *testing.T) {
	e := MustNew(people, Record{"id": 1, "name": "Ada"})
	require.NoError(t, e.Set("name", "Grace"))
	require.NoError(t, e.Set("age", 40))
	require.True(t, e.HasChanges())

	e.SyncOriginalValues()
	assert.False(t, e.HasChanges())

	v, ok := e.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Grace", v)
}

func TestShallowComparison(t *testing.T) {
	tags := []string{"a", "b"}
	e := MustNew(people, Record{"id": 1, "tags": tags})

	tags[0] = "z"
	assert.False(t, e.HasChanges(), "in-place mutation is not detected")

	require.NoError(t, e.Set("tags", append([]string(nil), tags...)))
	assert.True(t, e.HasChanges(), "a new slice is a change")
}

type labels struct {
	Names []string
	Extra map[string]any
	note  string
	Any   any
}

func TestSameValue(t *testing.T) {
	s := []int{1, 2}
	m := map[string]int{"a": 1}
	now := time.Now()
	l := labels{Names: []string{"a"}, Extra: map[string]any{"k": 1}, note: "n", Any: s}
	arr := [2][]int{s, s}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, 1, false},
		{"equal ints", 1, 1, true},
		{"different types", int64(1), 1, false},
		{"equal strings", "x", "x", true},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"equal but distinct slices", []int{1}, []int{1}, false},
		{"same map", m, m, true},
		{"distinct maps", map[string]int{}, map[string]int{}, false},
		{"same time", now, now, true},
		{"struct holding a slice", l, l, true},
		{"struct copy shares the slice", l, labels{Names: l.Names, Extra: l.Extra, note: "n", Any: s}, true},
		{"struct with another slice", l, labels{Names: []string{"a"}, Extra: l.Extra, note: "n", Any: s}, false},
		{"struct with another unexported field", l, labels{Names: l.Names, Extra: l.Extra, note: "m", Any: s}, false},
		{"struct with nil interface field", labels{}, labels{}, true},
		{"array of slices", arr, arr, true},
		{"array with another slice", arr, [2][]int{s, {1, 2}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameValue(tt.a, tt.b))
		})
	}
}

func TestOriginal(t *testing.T) {
	e := MustNew(people, Record{"id": 1, "name": "Ada"})
	require.NoError(t, e.Set("id", 2))

	v, ok := e.Original("id")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = e.Original("age")
	assert.False(t, ok)
}

func TestStructValuesRoundTrip(t *testing.T) {
	e := MustNew(people, Record{"id": 1, "tags": labels{Names: []string{"a"}}})
	assert.False(t, e.HasChanges(), "a struct holding a slice equals itself")

	require.NoError(t, e.Set("tags", labels{Names: []string{"a"}}))
	assert.True(t, e.HasChanges(), "a fresh slice is a change")

	e.SyncOriginalValues()
	assert.False(t, e.HasChanges())
}

func TestFromRowMapsPhysicalNames(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e, err := FromRow(people, map[string]any{
		"id":         int64(5),
		"name":       "Ada",
		"created_at": ts,
		"extra":      "ignored",
	})
	require.NoError(t, err)

	v, ok := e.Get("createdAt")
	require.True(t, ok)
	assert.Equal(t, ts, v)

	_, ok = e.Get("extra")
	assert.False(t, ok)
	assert.False(t, e.HasChanges())
}

func TestMergeKeepsSnapshot(t *testing.T) {
	e := MustNew(people, Record{"name": "Ada"})
	e.Merge(map[string]any{"id": int64(9), "created_at": "now"})

	assert.Equal(t, Record{"id": int64(9), "createdAt": "now"}, e.Changes())
	e.SyncOriginalValues()
	assert.False(t, e.HasChanges())
}

func TestValuesIsCopy(t *testing.T) {
	e := MustNew(people, Record{"name": "Ada"})
	vals := e.Values()
	vals["name"] = "Other"
	v, _ := e.Get("name")
	assert.Equal(t, "Ada", v)
}
