package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, items []models.CartItem, token string) (*models.Order, error) {
	args := m.Called(ctx, items, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, token, currency string, page int) ([]models.Order, error) {
	args := m.Called(ctx, token, currency, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[name]++
	return nil
}

func (m *countingMetrics) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

func (m *countingMetrics) IsEnabled() bool { return true }

func filledCart() *store.CartStore {
	cart := store.NewCartStore()
	cart.Add(models.Product{ID: 1, ConvertedPrice: 10})
	cart.Add(models.Product{ID: 1, ConvertedPrice: 10})
	cart.Add(models.Product{ID: 2, ConvertedPrice: 5})
	return cart
}

func TestFinishOrder_EmptyCart(t *testing.T) {
	orders := new(MockOrderService)
	checkout := NewCheckout(orders, store.NewCartStore(), nil, zap.NewNop())

	order, err := checkout.FinishOrder(context.Background(), "tok")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.Equal(t, apperrors.KindEmptyCart, apperrors.KindOf(err))
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinishOrder_Success(t *testing.T) {
	cart := filledCart()
	metrics := &countingMetrics{}
	orders := new(MockOrderService)
	orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(items []models.CartItem) bool {
		return len(items) == 2 && items[0].ID == 1 && items[0].Quantity == 2 && items[1].ID == 2
	}), "tok").Return(&models.Order{ID: 77}, nil).Once()
	checkout := NewCheckout(orders, cart, metrics, zap.NewNop())

	order, err := checkout.FinishOrder(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, int64(77), order.ID)
	assert.Equal(t, 0, cart.Len())
	assert.Equal(t, 0, cart.Count())
	assert.Equal(t, 1, metrics.counts[awspkg.MetricOrdersCreated])
	assert.Equal(t, 1, metrics.counts[awspkg.MetricCartCheckouts])
	assert.False(t, checkout.InFlight())
	orders.AssertExpectations(t)
}

func TestFinishOrder_FailureKeepsCart(t *testing.T) {
	cart := filledCart()
	before := cart.Items()
	metrics := &countingMetrics{}
	orders := new(MockOrderService)
	orders.On("CreateOrder", mock.Anything, mock.Anything, "tok").
		Return(nil, apperrors.Network("Request failed with status code 422", errors.New("upstream"))).Once()
	checkout := NewCheckout(orders, cart, metrics, zap.NewNop())

	order, err := checkout.FinishOrder(context.Background(), "tok")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrOrderFailed)
	assert.Equal(t, "Could not finish the order. Please try again later.", apperrors.From(err).Message)
	assert.Equal(t, before, cart.Items())
	assert.Equal(t, 1, metrics.counts[awspkg.MetricOrdersFailed])
	assert.False(t, checkout.InFlight())
}

func TestFinishOrder_RejectsConcurrentSubmit(t *testing.T) {
	cart := filledCart()
	entered := make(chan struct{})
	release := make(chan struct{})
	orders := new(MockOrderService)
	orders.On("CreateOrder", mock.Anything, mock.Anything, "tok").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&models.Order{ID: 1}, nil).Once()
	checkout := NewCheckout(orders, cart, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := checkout.FinishOrder(context.Background(), "tok")
		done <- err
	}()
	<-entered

	_, err := checkout.FinishOrder(context.Background(), "tok")
	assert.ErrorIs(t, err, apperrors.ErrCheckoutInProgress)
	assert.True(t, checkout.InFlight())

	close(release)
	require.NoError(t, <-done)
	orders.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestFinishOrder_NoToken(t *testing.T) {
	orders := new(MockOrderService)
	checkout := NewCheckout(orders, filledCart(), nil, zap.NewNop())

	_, err := checkout.FinishOrder(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrNotSignedIn)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinishOrder_CanceledKeepsCart(t *testing.T) {
	cart := filledCart()
	orders := new(MockOrderService)
	orders.On("CreateOrder", mock.Anything, mock.Anything, "tok").
		Return(nil, apperrors.Canceled(context.Canceled)).Once()
	checkout := NewCheckout(orders, cart, nil, zap.NewNop())

	_, err := checkout.FinishOrder(context.Background(), "tok")

	assert.Equal(t, apperrors.KindCanceled, apperrors.KindOf(err))
	assert.Equal(t, 3, cart.Count())
}

func TestFinishOrder_KeepsLinesAddedWhileSubmitting(t *testing.T) {
	cart := filledCart()
	orders := new(MockOrderService)
	orders.On("CreateOrder", mock.Anything, mock.Anything, "tok").
		Run(func(mock.Arguments) {
			cart.Add(models.Product{ID: 3, ConvertedPrice: 7})
			cart.Increase(1)
		}).
		Return(&models.Order{ID: 5}, nil).Once()
	checkout := NewCheckout(orders, cart, nil, zap.NewNop())

	_, err := checkout.FinishOrder(context.Background(), "tok")

	require.NoError(t, err)
	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, int64(3), items[1].ID)
	assert.Equal(t, 2, cart.Count())
}
