package litorm

import (
	"context"
	"sync"

	"github.com/tordrt/litorm/adapter"
)

type call struct {
	SQL    string
	Params []any
}

// fakeAdapter records every statement and answers from a queue of results.
type fakeAdapter struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	config     adapter.Config
	calls      []call
	results    []*adapter.Result
	queryErr   error
	tables     map[string][]adapter.ColumnSpec
}

func newFakeAdapter(results ...*adapter.Result) *fakeAdapter {
	return &fakeAdapter{connected: true, results: results, tables: map[string][]adapter.ColumnSpec{}}
}

func (f *fakeAdapter) Connect(_ context.Context, cfg adapter.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = cfg
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeAdapter) Disconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeAdapter) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeAdapter) Query(_ context.Context, sql string, params []any) (*adapter.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{SQL: sql, Params: params})
	if f.queryErr != nil {
		return nil, &adapter.QueryError{SQL: sql, Err: f.queryErr}
	}
	if len(f.results) == 0 {
		return &adapter.Result{}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func (f *fakeAdapter) CreateTable(_ context.Context, table string, columns []adapter.ColumnSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = columns
	return nil
}

func (f *fakeAdapter) DropTable(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tables, table)
	return nil
}

func (f *fakeAdapter) TableExists(_ context.Context, table string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tables[table]
	return ok, nil
}

func (f *fakeAdapter) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func rows(rs ...adapter.Row) *adapter.Result {
	return &adapter.Result{Rows: rs, RowCount: int64(len(rs))}
}
