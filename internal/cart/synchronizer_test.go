package cart

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	"github.com/miku-nicol/klassyz-hair-client/internal/session"
	"github.com/miku-nicol/klassyz-hair-client/internal/storage"
	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetCart(ctx context.Context) (*domain.CartSnapshot, error) {
	args := m.Called(ctx)
	if snap := args.Get(0); snap != nil {
		return snap.(*domain.CartSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) AddToCart(ctx context.Context, productID string, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *mockAPI) UpdateQuantity(ctx context.Context, productID, action string) (*api.UpdateQuantityResult, error) {
	args := m.Called(ctx, productID, action)
	if res := args.Get(0); res != nil {
		return res.(*api.UpdateQuantityResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPI) RemoveItem(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *mockAPI) ClearCart(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type staticTokens struct {
	token string
}

func (s staticTokens) Token() (string, bool) {
	return s.token, s.token != ""
}

func serverCart(items ...domain.CartItem) *domain.CartSnapshot {
	return &domain.CartSnapshot{CartedItems: items}
}

func wigLine(quantity int) domain.CartItem {
	return domain.CartItem{
		ProductID:      "wig-1",
		Name:           "Lace Front Wig",
		Price:          20_000,
		Quantity:       quantity,
		TotalItemPrice: 20_000 * int64(quantity),
	}
}

func TestSynchronizer_AddWithoutCredential(t *testing.T) {
	backend := new(mockAPI)
	sync := New(backend, staticTokens{}, slog.Default())

	err := sync.Add(context.Background(), "wig-1", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	backend.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
	backend.AssertNotCalled(t, "GetCart", mock.Anything)
	assert.Equal(t, 0, sync.Count())
}

func TestSynchronizer_AddConvergesToServerSnapshot(t *testing.T) {
	backend := new(mockAPI)
	backend.On("AddToCart", mock.Anything, "wig-1", 2).Return(nil)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(2)), nil)

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Add(context.Background(), "wig-1", 2))

	snap := sync.Snapshot()
	require.Len(t, snap.CartedItems, 1)
	assert.Equal(t, int64(40_000), snap.Subtotal())
	backend.AssertExpectations(t)
}

func TestSynchronizer_AddRollsBackOnFailure(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(1)), nil).Once()
	backend.On("AddToCart", mock.Anything, "wig-1", 3).Return(apperrors.Unavailable("cart service down")).Once()

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 1, sync.Count())

	err := sync.Add(context.Background(), "wig-1", 3)
	require.Error(t, err)

	// The optimistic increment is undone, not left dangling.
	snap := sync.Snapshot()
	require.Len(t, snap.CartedItems, 1)
	assert.Equal(t, 1, snap.CartedItems[0].Quantity)
	assert.Equal(t, int64(20_000), snap.CartedItems[0].TotalItemPrice)
}

func TestSynchronizer_AddRejectsNonPositiveQuantity(t *testing.T) {
	backend := new(mockAPI)
	sync := New(backend, staticTokens{token: "tok"}, slog.Default())

	err := sync.Add(context.Background(), "wig-1", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	backend.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestSynchronizer_UpdateQuantityReplacesSnapshot(t *testing.T) {
	backend := new(mockAPI)
	backend.On("UpdateQuantity", mock.Anything, "wig-1", domain.ActionIncrease).
		Return(&api.UpdateQuantityResult{Success: true, Data: *serverCart(wigLine(5))}, nil)

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.UpdateQuantity(context.Background(), "wig-1", domain.ActionIncrease))

	snap := sync.Snapshot()
	require.Len(t, snap.CartedItems, 1)
	assert.Equal(t, 5, snap.CartedItems[0].Quantity)
}

func TestSynchronizer_UpdateQuantityKeepsStaleViewOnFailure(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(2)), nil).Once()
	backend.On("UpdateQuantity", mock.Anything, "wig-1", domain.ActionDecrease).
		Return(nil, apperrors.Unavailable("cart service down"))

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))

	err := sync.UpdateQuantity(context.Background(), "wig-1", domain.ActionDecrease)
	require.Error(t, err)

	snap := sync.Snapshot()
	require.Len(t, snap.CartedItems, 1)
	assert.Equal(t, 2, snap.CartedItems[0].Quantity)
}

func TestSynchronizer_RemoveOptimisticThenResyncOnFailure(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(2)), nil)
	backend.On("RemoveItem", mock.Anything, "wig-1").Return(apperrors.Unavailable("cart service down"))

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))

	err := sync.Remove(context.Background(), "wig-1")
	require.Error(t, err)

	// The failed removal triggered a resync back to the server's view.
	assert.Equal(t, 2, sync.Count())
	backend.AssertNumberOfCalls(t, "GetCart", 2)
}

func TestSynchronizer_RemoveSuccess(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(2)), nil).Once()
	backend.On("RemoveItem", mock.Anything, "wig-1").Return(nil)

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))
	require.NoError(t, sync.Remove(context.Background(), "wig-1"))

	assert.True(t, sync.Snapshot().IsEmpty())
}

func TestSynchronizer_ClearOptimisticThenResyncOnFailure(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(1)), nil)
	backend.On("ClearCart", mock.Anything).Return(apperrors.Unavailable("cart service down"))

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))

	err := sync.Clear(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, sync.Count())
}

func TestSynchronizer_RefreshWithoutCredential(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(1)), nil).Once()

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 1, sync.Count())

	// Losing the credential empties the mirror without a request.
	loggedOut := New(backend, staticTokens{}, slog.Default())
	require.NoError(t, loggedOut.Refresh(context.Background()))
	assert.True(t, loggedOut.Snapshot().IsEmpty())
	backend.AssertNumberOfCalls(t, "GetCart", 1)
}

func TestSynchronizer_RefreshFailureEmptiesMirror(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(1)), nil).Once()
	backend.On("GetCart", mock.Anything).Return(nil, apperrors.Unavailable("cart service down")).Once()

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))
	require.Equal(t, 1, sync.Count())

	err := sync.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, sync.Snapshot().IsEmpty())
}

func TestSynchronizer_WatchFollowsCredentialEvents(t *testing.T) {
	mem := storage.NewMemStore()
	store := session.NewStore(mem, slog.Default())

	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(3)), nil)

	sync := New(backend, store, slog.Default())
	events, cancel := store.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		sync.Watch(ctx, events)
	}()

	require.NoError(t, store.SetToken("tok"))
	require.Eventually(t, func() bool { return sync.Count() == 3 }, time.Second, 10*time.Millisecond)

	require.NoError(t, store.Clear())
	require.Eventually(t, func() bool { return sync.Count() == 0 }, time.Second, 10*time.Millisecond)

	stop()
	<-done
}

func TestSynchronizer_SnapshotIsACopy(t *testing.T) {
	backend := new(mockAPI)
	backend.On("GetCart", mock.Anything).Return(serverCart(wigLine(1)), nil)

	sync := New(backend, staticTokens{token: "tok"}, slog.Default())
	require.NoError(t, sync.Refresh(context.Background()))

	snap := sync.Snapshot()
	snap.CartedItems[0].Quantity = 99

	assert.Equal(t, 1, sync.Snapshot().CartedItems[0].Quantity)
}
