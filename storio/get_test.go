package storio_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrZLO/storio/storio"
)

type testUser struct {
	ID   int64
	Name string
}

func userResolver() storio.GetResolver[testUser] {
	return storio.NewGetResolver(func(cursor storio.Cursor) (testUser, error) {
		var user testUser
		scanErr := cursor.Scan(&user.ID, &user.Name)
		return user, scanErr
	})
}

func usersQuery() storio.Query {
	return storio.BuildQuery().
		Table("users").
		Finalize()
}

func Test_Prepare_Validation(t *testing.T) {
	store := newFakeStore()

	tests := []struct {
		name        string
		prepare     func() (storio.PreparedGetObject[testUser], error)
		expectedErr error
	}{
		{
			name: "nil_store_fails",
			prepare: func() (storio.PreparedGetObject[testUser], error) {
				return storio.GetObject[testUser](nil).
					WithQuery(usersQuery()).
					Prepare()
			},
			expectedErr: storio.ErrNilRowStore,
		},
		{
			name: "empty_table_fails",
			prepare: func() (storio.PreparedGetObject[testUser], error) {
				return storio.GetObject[testUser](store).
					WithQuery(storio.BuildQuery().Table("").Finalize()).
					Prepare()
			},
			expectedErr: storio.ErrEmptyTableName,
		},
		{
			name: "empty_raw_statement_fails",
			prepare: func() (storio.PreparedGetObject[testUser], error) {
				return storio.GetObject[testUser](store).
					WithRawQuery(storio.BuildRawQuery().Statement("").Finalize()).
					Prepare()
			},
			expectedErr: storio.ErrEmptyStatement,
		},
		{
			name: "zero_value_builder_fails",
			prepare: func() (storio.PreparedGetObject[testUser], error) {
				var incomplete storio.CompleteGetObjectBuilder[testUser]
				return incomplete.Prepare()
			},
			expectedErr: storio.ErrNilRowStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.prepare()

			require.Error(t, err)
			assert.ErrorIs(t, err, storio.ErrConfiguration)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_Prepare_ValidDescriptorSucceeds(t *testing.T) {
	store := newFakeStore()

	_, queryErr := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		Prepare()
	assert.NoError(t, queryErr)

	_, rawErr := storio.GetObject[testUser](store).
		WithRawQuery(storio.BuildRawQuery().Statement("SELECT 1").Finalize()).
		Prepare()
	assert.NoError(t, rawErr)
}

func Test_ExecuteBlocking_ZeroRowsIsAbsenceNotError(t *testing.T) {
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor { return &fakeCursor{} }

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	object, found, execErr := operation.ExecuteBlocking(context.Background())

	assert.NoError(t, execErr)
	assert.False(t, found)
	assert.Equal(t, testUser{}, object)
	assert.Equal(t, 1, store.LastCursor().CloseCalls())
}

func Test_ExecuteBlocking_MapsOnlyTheFirstRow(t *testing.T) {
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{rows: [][]any{
			{int64(1), "first"},
			{int64(2), "second"},
			{int64(3), "third"},
		}}
	}

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	object, found, execErr := operation.ExecuteBlocking(context.Background())

	require.NoError(t, execErr)
	assert.True(t, found)
	assert.Equal(t, testUser{ID: 1, Name: "first"}, object)
	assert.Equal(t, 1, store.LastCursor().CloseCalls())
}

func Test_ExecuteBlocking_ExplicitResolverOverridesRegistry(t *testing.T) {
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{rows: [][]any{{int64(1), "row"}}}
	}

	storio.RegisterGetResolver(store.registry, storio.NewGetResolver(func(_ storio.Cursor) (testUser, error) {
		return testUser{Name: "from-registry"}, nil
	}))

	explicit := storio.NewGetResolver(func(_ storio.Cursor) (testUser, error) {
		return testUser{Name: "from-explicit"}, nil
	})

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(explicit).
		Prepare()
	require.NoError(t, err)

	object, found, execErr := operation.ExecuteBlocking(context.Background())

	require.NoError(t, execErr)
	assert.True(t, found)
	assert.Equal(t, "from-explicit", object.Name)
}

func Test_ExecuteBlocking_FallsBackToRegistryResolver(t *testing.T) {
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{rows: [][]any{{int64(7), "registered"}}}
	}

	storio.RegisterGetResolver(store.registry, userResolver())

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		Prepare()
	require.NoError(t, err)

	object, found, execErr := operation.ExecuteBlocking(context.Background())

	require.NoError(t, execErr)
	assert.True(t, found)
	assert.Equal(t, testUser{ID: 7, Name: "registered"}, object)
}

func Test_ExecuteBlocking_MissingResolverIsConfigurationErrorAndStoreUntouched(t *testing.T) {
	store := newFakeStore()

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		Prepare()
	require.NoError(t, err)

	_, found, execErr := operation.ExecuteBlocking(context.Background())

	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, storio.ErrConfiguration)
	assert.ErrorIs(t, execErr, storio.ErrNoGetResolverRegistered)
	assert.NotErrorIs(t, execErr, storio.ErrGetOperationFailed)
	assert.False(t, found)
	assert.Equal(t, 0, store.ExecutionCount(), "store must not be touched on a dispatch failure")
}

func Test_ExecuteBlocking_ExecutionFailureIsWrappedWithCause(t *testing.T) {
	storeFailure := errors.New("connection refused")
	store := newFakeStore()
	store.cursorErr = storeFailure

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	_, _, execErr := operation.ExecuteBlocking(context.Background())

	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, storio.ErrGetOperationFailed)
	assert.ErrorIs(t, execErr, storeFailure)
}

func Test_ExecuteBlocking_MappingFailureClosesCursorAndWrapsCause(t *testing.T) {
	mappingFailure := errors.New("scan mismatch")
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{rows: [][]any{{int64(1), "row"}}, scanErr: mappingFailure}
	}

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	_, _, execErr := operation.ExecuteBlocking(context.Background())

	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, storio.ErrGetOperationFailed)
	assert.ErrorIs(t, execErr, mappingFailure)
	assert.Equal(t, 1, store.LastCursor().CloseCalls())
}

func Test_ExecuteBlocking_CloseFailureChainsWithoutDisplacingMappingError(t *testing.T) {
	mappingFailure := errors.New("scan mismatch")
	closeFailure := errors.New("cursor already gone")
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{
			rows:     [][]any{{int64(1), "row"}},
			scanErr:  mappingFailure,
			closeErr: closeFailure,
		}
	}

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	_, _, execErr := operation.ExecuteBlocking(context.Background())

	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, mappingFailure)
	assert.ErrorIs(t, execErr, storio.ErrClosingCursorFailed)
	assert.ErrorIs(t, execErr, closeFailure)
}

func Test_ExecuteBlocking_CloseFailureAloneIsAnOperationError(t *testing.T) {
	closeFailure := errors.New("cursor already gone")
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{rows: [][]any{{int64(1), "row"}}, closeErr: closeFailure}
	}

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	_, _, execErr := operation.ExecuteBlocking(context.Background())

	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, storio.ErrGetOperationFailed)
	assert.ErrorIs(t, execErr, storio.ErrClosingCursorFailed)
}

func Test_ExecuteBlocking_IterationErrorIsNotAbsence(t *testing.T) {
	iterationFailure := errors.New("row iteration failed")
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{iterErr: iterationFailure}
	}

	operation, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	_, found, execErr := operation.ExecuteBlocking(context.Background())

	require.Error(t, execErr)
	assert.ErrorIs(t, execErr, iterationFailure)
	assert.False(t, found)
}

func Test_ExecuteBlocking_RawQueryUsesRawCursorPath(t *testing.T) {
	store := newFakeStore()
	store.cursorFactory = func() *fakeCursor {
		return &fakeCursor{rows: [][]any{{int64(9), "joined"}}}
	}

	operation, err := storio.GetObject[testUser](store).
		WithRawQuery(storio.BuildRawQuery().
			Statement("SELECT u.id, u.name FROM users u JOIN orders o ON o.user_id = u.id WHERE o.id = ?", int64(5)).
			ObservingTables("users", "orders").
			Finalize()).
		WithGetResolver(userResolver()).
		Prepare()
	require.NoError(t, err)

	object, found, execErr := operation.ExecuteBlocking(context.Background())

	require.NoError(t, execErr)
	assert.True(t, found)
	assert.Equal(t, testUser{ID: 9, Name: "joined"}, object)
	assert.Equal(t, 0, store.getCalls)
	assert.Equal(t, 1, store.rawCalls)
}

func Test_ObservedTables(t *testing.T) {
	store := newFakeStore()

	structured, err := storio.GetObject[testUser](store).
		WithQuery(usersQuery()).
		Prepare()
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, structured.ObservedTables())

	raw, err := storio.GetObject[testUser](store).
		WithRawQuery(storio.BuildRawQuery().
			Statement("SELECT 1").
			ObservingTables("orders", "users").
			Finalize()).
		Prepare()
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, raw.ObservedTables())

	rawWithoutTables, err := storio.GetObject[testUser](store).
		WithRawQuery(storio.BuildRawQuery().Statement("SELECT 1").Finalize()).
		Prepare()
	require.NoError(t, err)
	assert.Empty(t, rawWithoutTables.ObservedTables())
}
