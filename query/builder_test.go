package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/litorm/entity"
	"github.com/tordrt/litorm/schema"
)

var (
	users = schema.MustNew("User", "users",
		schema.Column("id", schema.TypeNumber, schema.PrimaryKey()),
		schema.Column("userName", schema.TypeString, schema.Name("user_name")),
		schema.Column("age", schema.TypeNumber),
		schema.Column("email", schema.TypeString),
	)
	orders = schema.MustNew("Order", "orders",
		schema.Column("id", schema.TypeNumber, schema.PrimaryKey()),
		schema.Column("status", schema.TypeString),
		schema.Column("userId", schema.TypeNumber, schema.Name("user_id"), schema.References("users", "id")),
	)
)

func TestBuildInsertRecord(t *testing.T) {
	stmt, err := New(users).Insert(entity.Record{"id": 1, "userName": "al"}).Build()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("id","user_name") VALUES ($1,$2) RETURNING *`, stmt.SQL)
	assert.Equal(t, []any{1, "al"}, stmt.Params)
}

func TestBuildInsertEntitySkipsUnset(t *testing.T) {
	e := entity.MustNew(users, entity.Record{"userName": "al", "email": nil})
	stmt, err := New(users).InsertEntity(e).Build()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("user_name","email") VALUES ($1,$2) RETURNING *`, stmt.SQL)
	assert.Equal(t, []any{"al", nil}, stmt.Params)
}

func TestBuildInsertEmpty(t *testing.T) {
	_, err := New(users).Insert(nil).Build()
	require.ErrorIs(t, err, ErrEmptyData)

	_, err = New(users).InsertEntity(entity.MustNew(users, nil)).Build()
	require.ErrorIs(t, err, ErrEmptyData)
}

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name       string
		build      func() *Builder
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "bare select",
			build:   func() *Builder { return New(users).Select() },
			wantSQL: `SELECT * FROM "users"`,
		},
		{
			name: "filter order limit",
			build: func() *Builder {
				return New(orders).Select().
					WhereMap(entity.Record{"status": "active"}).
					OrderBy("createdAt", Desc).
					Limit(10)
			},
			wantSQL:    `SELECT * FROM "orders" WHERE "status" = $1 ORDER BY "createdAt" DESC LIMIT $2`,
			wantParams: []any{"active", 10},
		},
		{
			name:    "projection resolves columns",
			build:   func() *Builder { return New(users).Select("id", "userName", "users.*") },
			wantSQL: `SELECT "id", "user_name", "users".* FROM "users"`,
		},
		{
			name: "limit and offset are parameters",
			build: func() *Builder {
				return New(users).Select().Limit(20).Offset(40)
			},
			wantSQL:    `SELECT * FROM "users" LIMIT $1 OFFSET $2`,
			wantParams: []any{20, 40},
		},
		{
			name: "operators",
			build: func() *Builder {
				return New(users).Select().
					WhereOp("age", ">=", 18).
					Where(Like("email", "%@example.com"), Neq("id", 3)).
					WhereOp("userName", "is not", nil)
			},
			wantSQL:    `SELECT * FROM "users" WHERE "age" >= $1 AND "email" LIKE $2 AND "id" != $3 AND "user_name" IS NOT NULL`,
			wantParams: []any{18, "%@example.com", 3},
		},
		{
			name: "multiple orders in call order",
			build: func() *Builder {
				return New(users).Select().OrderBy("age", "").OrderBy("userName", Desc)
			},
			wantSQL: `SELECT * FROM "users" ORDER BY "age" ASC, "user_name" DESC`,
		},
		{
			name: "joins before where",
			build: func() *Builder {
				return New(users).Select("users.*").
					Join("orders", "orders.user_id", "users.id").
					Join("addresses", "a.user_id", "users.id", WithKind(LeftJoin), WithAlias("a")).
					WhereEq("orders.status", "paid")
			},
			wantSQL: `SELECT "users".* FROM "users" ` +
				`INNER JOIN "orders" ON "orders"."user_id" = "users"."id" ` +
				`LEFT JOIN "addresses" AS "a" ON "a"."user_id" = "users"."id" ` +
				`WHERE "orders"."status" = $1`,
			wantParams: []any{"paid"},
		},
		{
			name: "unknown property is used verbatim",
			build: func() *Builder {
				return New(users).Select().WhereEq("nickname", "al")
			},
			wantSQL:    `SELECT * FROM "users" WHERE "nickname" = $1`,
			wantParams: []any{"al"},
		},
		{
			name: "quotes inside identifiers are escaped",
			build: func() *Builder {
				return New(users).Select().WhereEq(`bad"name`, 1)
			},
			wantSQL:    `SELECT * FROM "users" WHERE "bad""name" = $1`,
			wantParams: []any{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := tt.build().Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			if tt.wantParams == nil {
				assert.Empty(t, stmt.Params)
			} else {
				assert.Equal(t, tt.wantParams, stmt.Params)
			}
		})
	}
}

func TestWhereMapNumbersContiguously(t *testing.T) {
	stmt, err := New(users).Select().
		WhereMap(entity.Record{"email": "a@b.c", "id": 4, "userName": "al", "zz": true, "aa": false}).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "users" WHERE "id" = $1 AND "user_name" = $2 AND "email" = $3 AND "aa" = $4 AND "zz" = $5`,
		stmt.SQL)
	assert.Equal(t, []any{4, "al", "a@b.c", false, true}, stmt.Params)
}

func TestBuildUpdateEntityWritesChangesOnly(t *testing.T) {
	e := entity.MustNew(users, entity.Record{"id": 7, "userName": "al", "age": 30})
	require.NoError(t, e.Set("age", 31))

	stmt, err := New(users).UpdateEntity(e).WhereEq("id", 7).Build()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "age" = $1 WHERE "id" = $2 RETURNING *`, stmt.SQL)
	assert.Equal(t, []any{31, 7}, stmt.Params)
}

func TestBuildUpdateRecord(t *testing.T) {
	stmt, err := New(users).Update(entity.Record{"email": "x@y.z", "userName": "bo"}).Build()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "user_name" = $1, "email" = $2 RETURNING *`, stmt.SQL)
	assert.Equal(t, []any{"bo", "x@y.z"}, stmt.Params)
}

func TestBuildUpdateEmpty(t *testing.T) {
	e := entity.MustNew(users, entity.Record{"id": 1})
	_, err := New(users).UpdateEntity(e).WhereEq("id", 1).Build()
	require.ErrorIs(t, err, ErrEmptyData)
}

func TestBuildDelete(t *testing.T) {
	stmt, err := New(users).Delete().WhereEq("id", 3).Build()
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" = $1`, stmt.SQL)
	assert.Equal(t, []any{3}, stmt.Params)
}

func TestBuildDeleteWithoutWhereIsRejected(t *testing.T) {
	for _, meta := range []*schema.Metadata{users, orders} {
		t.Run(meta.TableName(), func(t *testing.T) {
			_, err := New(meta).Delete().Build()
			require.ErrorIs(t, err, ErrUnsafeDelete)
		})
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	b := New(users).Select().WhereEq("id", 1).Limit(1)
	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, `SELECT * FROM "users" WHERE "id" = $1 LIMIT $2`, second.SQL)
}

func TestInvalidClauses(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Builder
	}{
		{"operator", func() *Builder { return New(users).Select().WhereOp("id", "; DROP TABLE users", 1) }},
		{"IS with value", func() *Builder { return New(users).Select().WhereOp("id", "IS", 1) }},
		{"direction", func() *Builder { return New(users).Select().OrderBy("id", Direction("SIDEWAYS")) }},
		{"join kind", func() *Builder { return New(users).Select().Join("orders", "a", "b", WithKind("CROSS")) }},
		{"negative limit", func() *Builder { return New(users).Select().Limit(-1) }},
		{"negative offset", func() *Builder { return New(users).Select().Offset(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()
			require.ErrorIs(t, b.Err(), ErrInvalidClause)
			_, err := b.Build()
			require.ErrorIs(t, err, ErrInvalidClause)
		})
	}
}

func TestReset(t *testing.T) {
	b := New(users).Delete().WhereEq("id", 1).OrderBy("id", Desc).Limit(3).Offset(2).WhereOp("id", "??", 1)
	require.Error(t, b.Err())

	b.Reset()
	assert.Equal(t, KindSelect, b.Kind())
	assert.NoError(t, b.Err())

	stmt, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users"`, stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestUnsupportedStatement(t *testing.T) {
	b := New(users)
	b.kind = Kind(42)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrUnsupportedStatement)
}

func TestMissingMetadata(t *testing.T) {
	_, err := New(nil).Insert(entity.Record{"a": 1}).Build()
	require.ErrorIs(t, err, schema.ErrMissingMetadata)
}

func TestPlaceholder(t *testing.T) {
	for n := 1; n <= 12; n++ {
		assert.Equal(t, fmt.Sprintf("$%d", n), Placeholder(n))
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"*", "*"},
		{"users", `"users"`},
		{"public.users", `"public"."users"`},
		{"u.*", `"u".*`},
		{`we"ird`, `"we""ird"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteIdent(tt.in))
		})
	}
}
