package storio_test

import (
	"context"
	"sync"

	"github.com/MrZLO/storio/storio"
)

// fakeCursor is an in-memory Cursor over pre-canned rows.
type fakeCursor struct {
	rows     [][]any
	pos      int
	scanErr  error
	iterErr  error
	closeErr error

	mu         sync.Mutex
	closeCalls int
}

func (c *fakeCursor) Next() bool {
	if c.pos < len(c.rows) {
		c.pos++
		return true
	}

	return false
}

func (c *fakeCursor) Scan(dest ...any) error {
	if c.scanErr != nil {
		return c.scanErr
	}

	row := c.rows[c.pos-1]
	for i := range dest {
		switch d := dest[i].(type) {
		case *string:
			*d = row[i].(string)
		case *int64:
			*d = row[i].(int64)
		case *[]byte:
			*d = row[i].([]byte)
		}
	}

	return nil
}

func (c *fakeCursor) Err() error {
	return c.iterErr
}

func (c *fakeCursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCalls++

	return c.closeErr
}

func (c *fakeCursor) CloseCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeCalls
}

// fakeChangeSubscription is a hand-fed ChangeSubscription.
type fakeChangeSubscription struct {
	changes chan storio.Change

	mu               sync.Mutex
	unsubscribeCalls int
	closed           bool
}

func newFakeChangeSubscription() *fakeChangeSubscription {
	return &fakeChangeSubscription{changes: make(chan storio.Change, 16)}
}

func (s *fakeChangeSubscription) Changes() <-chan storio.Change {
	return s.changes
}

func (s *fakeChangeSubscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribeCalls++

	if !s.closed {
		s.closed = true
		close(s.changes)
	}
}

func (s *fakeChangeSubscription) UnsubscribeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unsubscribeCalls
}

func (s *fakeChangeSubscription) Push(change storio.Change) {
	s.changes <- change
}

// fakeStore is an in-memory RowStore whose cursors are produced by a
// caller-supplied factory, so each execution can see different rows.
type fakeStore struct {
	registry      *storio.TypeRegistry
	cursorFactory func() *fakeCursor
	cursorErr     error
	changeSub     *fakeChangeSubscription
	observeErr    error

	mu             sync.Mutex
	getCalls       int
	rawCalls       int
	observeCalls   int
	observedTables []string
	lastQuery      storio.Query
	lastRawQuery   storio.RawQuery
	lastCursor     *fakeCursor
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		registry:      storio.NewTypeRegistry(),
		cursorFactory: func() *fakeCursor { return &fakeCursor{} },
	}
}

func (s *fakeStore) GetCursor(_ context.Context, query storio.Query) (storio.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	s.lastQuery = query

	if s.cursorErr != nil {
		return nil, s.cursorErr
	}

	s.lastCursor = s.cursorFactory()

	return s.lastCursor, nil
}

func (s *fakeStore) RawCursor(_ context.Context, rawQuery storio.RawQuery) (storio.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawCalls++
	s.lastRawQuery = rawQuery

	if s.cursorErr != nil {
		return nil, s.cursorErr
	}

	s.lastCursor = s.cursorFactory()

	return s.lastCursor, nil
}

func (s *fakeStore) Registry() *storio.TypeRegistry {
	return s.registry
}

func (s *fakeStore) ObserveChanges(tables []storio.TableNameString) (storio.ChangeSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observeCalls++
	s.observedTables = tables

	if s.observeErr != nil {
		return nil, s.observeErr
	}

	if s.changeSub == nil {
		s.changeSub = newFakeChangeSubscription()
	}

	return s.changeSub, nil
}

func (s *fakeStore) SetCursorError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorErr = err
}

func (s *fakeStore) ExecutionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getCalls + s.rawCalls
}

func (s *fakeStore) ObserveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.observeCalls
}

func (s *fakeStore) ObservedTables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.observedTables
}

func (s *fakeStore) LastCursor() *fakeCursor {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastCursor
}
