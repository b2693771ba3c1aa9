package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yashrajoria/storefront/clients"
	"github.com/yashrajoria/storefront/models"

	"go.uber.org/zap"
)

// OrderService wraps the authenticated order endpoints.
type OrderService interface {
	CreateOrder(ctx context.Context, items []models.CartItem, token string) (*models.Order, error)
	ListOrders(ctx context.Context, token, currency string, page int) ([]models.Order, error)
}

type orderServiceImpl struct {
	api             clients.Requester
	defaultCurrency string
	pageSize        int
	logger          *zap.Logger
}

func NewOrderService(api clients.Requester, defaultCurrency string, pageSize int, logger *zap.Logger) OrderService {
	return &orderServiceImpl{
		api:             api,
		defaultCurrency: defaultCurrency,
		pageSize:        pageSize,
		logger:          logger,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, items []models.CartItem, token string) (*models.Order, error) {
	var order models.Order
	body := models.NewCreateOrderRequest(items)
	if err := s.api.Request(ctx, http.MethodPost, "/ws/orders", nil, body, token, &order); err != nil {
		s.logger.Warn("Create order failed", zap.Int("lines", len(body.Items)), zap.Error(err))
		return nil, upstreamFailure("create order", err)
	}
	s.logger.Info("Order created", zap.Int64("order_id", order.ID), zap.Int("lines", len(body.Items)))
	return &order, nil
}

// ListOrders fetches one page (0-based) of the signed-in user's orders.
func (s *orderServiceImpl) ListOrders(ctx context.Context, token, currency string, page int) ([]models.Order, error) {
	if page < 0 {
		page = 0
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	var resp models.Page[models.Order]
	query := url.Values{
		"size": {strconv.Itoa(s.pageSize)},
		"page": {strconv.Itoa(page)},
	}
	if err := s.api.Request(ctx, http.MethodGet, clients.PathEscape("ws", "orders", currency), query, nil, token, &resp); err != nil {
		s.logger.Warn("List orders failed", zap.Int("page", page), zap.Error(err))
		return nil, upstreamFailure("list orders", err)
	}
	if resp.Content == nil {
		return []models.Order{}, nil
	}
	return resp.Content, nil
}
