// Package testutil provides testing utilities and helpers for backend tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

// MockStore is a mock implementation of storage.Store for testing.
type MockStore struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set mocks the Set method.
func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Keys mocks the Keys method.
func (m *MockStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSnapshotSource is a mock implementation of vfs.SnapshotSource for testing.
type MockSnapshotSource struct {
	mock.Mock
}

// Fetch mocks the Fetch method.
func (m *MockSnapshotSource) Fetch(ctx context.Context) (types.Directory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.Directory), args.Error(1)
}

// NewFailingStore creates a store whose every call fails with err.
func NewFailingStore(t *testing.T, err error) *MockStore {
	t.Helper()
	m := new(MockStore)

	m.On("Get", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	m.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
	m.On("Delete", mock.Anything, mock.Anything).Return(err).Maybe()
	m.On("Keys", mock.Anything, mock.Anything).Return(nil, err).Maybe()

	return m
}

// NewMockSnapshotSource creates a source that returns tree (or err) once per call.
func NewMockSnapshotSource(t *testing.T, tree types.Directory, err error) *MockSnapshotSource {
	t.Helper()
	m := new(MockSnapshotSource)
	if err != nil {
		m.On("Fetch", mock.Anything).Return(nil, err)
	} else {
		m.On("Fetch", mock.Anything).Return(tree, nil)
	}
	return m
}

// Home wraps entries in a root holding only the home directory.
func Home(entries types.Directory) types.Directory {
	return types.Directory{"~": entries}
}

// Path is shorthand for an absolute segment list under home.
func Path(segments ...string) []string {
	return append([]string{"~"}, segments...)
}
