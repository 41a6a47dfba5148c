package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDispatcher_SameStoreReturnsSameDispatcher(t *testing.T) {
	store := &fakeStore{}
	t.Cleanup(func() { _ = Shutdown(store) })

	d1, err := GetDispatcher(context.Background(), store, testConfig(), nil)
	require.NoError(t, err)

	d2, err := GetDispatcher(context.Background(), store, testConfig(), nil)
	require.NoError(t, err)

	assert.Same(t, d1, d2)
}

func TestGetDispatcher_DifferentStoresGetDifferentDispatchers(t *testing.T) {
	storeA := &fakeStore{}
	storeB := &fakeStore{}
	t.Cleanup(func() {
		_ = Shutdown(storeA)
		_ = Shutdown(storeB)
	})

	dA, err := GetDispatcher(context.Background(), storeA, testConfig(), nil)
	require.NoError(t, err)
	dB, err := GetDispatcher(context.Background(), storeB, testConfig(), nil)
	require.NoError(t, err)

	assert.NotSame(t, dA, dB)
}

func TestShutdown_UnknownStore_NoError(t *testing.T) {
	assert.NoError(t, Shutdown(&fakeStore{}))
}
