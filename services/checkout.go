package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/store"

	"go.uber.org/zap"
)

// Checkout places an order from the cart contents.
type Checkout struct {
	orders   OrderService
	cart     *store.CartStore
	metrics  awspkg.MetricsRecorder
	logger   *zap.Logger
	inFlight atomic.Bool
}

func NewCheckout(orders OrderService, cart *store.CartStore, metrics awspkg.MetricsRecorder, logger *zap.Logger) *Checkout {
	if metrics == nil {
		metrics = awspkg.NopMetrics()
	}
	return &Checkout{orders: orders, cart: cart, metrics: metrics, logger: logger}
}

// FinishOrder submits the cart. An empty cart fails without calling the
// backend. On success the submitted lines leave the cart; on failure it is
// left as it was.
// Only one submission runs at a time.
func (c *Checkout) FinishOrder(ctx context.Context, token string) (*models.Order, error) {
	items := c.cart.Items()
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	if token == "" {
		return nil, apperrors.ErrNotSignedIn
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, apperrors.ErrCheckoutInProgress
	}
	defer c.inFlight.Store(false)

	start := time.Now()
	c.record(ctx, awspkg.MetricCartCheckouts)

	order, err := c.orders.CreateOrder(ctx, items, token)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindCanceled {
			return nil, err
		}
		c.logger.Error("Finish order failed",
			zap.Int("lines", len(items)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		c.record(ctx, awspkg.MetricOrdersFailed)
		return nil, apperrors.ErrOrderFailed.Wrap(err)
	}

	c.cart.Deduct(items)
	c.record(ctx, awspkg.MetricOrdersCreated)
	c.logger.Info("Order finished",
		zap.Int64("order_id", order.ID),
		zap.Int("lines", len(items)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return order, nil
}

// InFlight reports whether a submission is running.
func (c *Checkout) InFlight() bool {
	return c.inFlight.Load()
}

func (c *Checkout) record(ctx context.Context, metric string) {
	if !c.metrics.IsEnabled() {
		return
	}
	// a canceled request must not lose the data point
	ctx = context.WithoutCancel(ctx)
	if err := c.metrics.RecordCount(ctx, metric, nil); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("Failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}
