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

// ProductService wraps the catalog endpoints. Reads are public; writes
// need the bearer token of an admin session.
type ProductService interface {
	ListProducts(ctx context.Context, currency string) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64, currency string) (*models.Product, error)
	CreateProduct(ctx context.Context, input models.ProductInput, token string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, input models.ProductInput, token string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64, token string) error
}

type productServiceImpl struct {
	api             clients.Requester
	defaultCurrency string
	pageSize        int
	logger          *zap.Logger
}

func NewProductService(api clients.Requester, defaultCurrency string, pageSize int, logger *zap.Logger) ProductService {
	return &productServiceImpl{
		api:             api,
		defaultCurrency: defaultCurrency,
		pageSize:        pageSize,
		logger:          logger,
	}
}

func (s *productServiceImpl) currency(c string) string {
	if c = strings.TrimSpace(c); c != "" {
		return strings.ToUpper(c)
	}
	return s.defaultCurrency
}

func (s *productServiceImpl) ListProducts(ctx context.Context, currency string) ([]models.Product, error) {
	var page models.Page[models.Product]
	query := url.Values{"size": {strconv.Itoa(s.pageSize)}}
	if err := s.api.Request(ctx, http.MethodGet, clients.PathEscape("products", s.currency(currency)), query, nil, "", &page); err != nil {
		s.logger.Warn("List products failed", zap.Error(err))
		return nil, upstreamFailure("list products", err)
	}
	if page.Content == nil {
		return []models.Product{}, nil
	}
	return page.Content, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id int64, currency string) (*models.Product, error) {
	var product models.Product
	path := clients.PathEscape("products", strconv.FormatInt(id, 10), s.currency(currency))
	if err := s.api.Request(ctx, http.MethodGet, path, nil, nil, "", &product); err != nil {
		s.logger.Warn("Get product failed", zap.Int64("product_id", id), zap.Error(err))
		return nil, upstreamFailure("get product", err)
	}
	return &product, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, input models.ProductInput, token string) (*models.Product, error) {
	var product models.Product
	if err := s.api.Request(ctx, http.MethodPost, "/ws/products", nil, input, token, &product); err != nil {
		s.logger.Warn("Create product failed", zap.Error(err))
		return nil, upstreamFailure("create product", err)
	}
	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	return &product, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id int64, input models.ProductInput, token string) (*models.Product, error) {
	var product models.Product
	path := clients.PathEscape("ws", "products", strconv.FormatInt(id, 10))
	if err := s.api.Request(ctx, http.MethodPut, path, nil, input, token, &product); err != nil {
		s.logger.Warn("Update product failed", zap.Int64("product_id", id), zap.Error(err))
		return nil, upstreamFailure("update product", err)
	}
	return &product, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id int64, token string) error {
	path := clients.PathEscape("ws", "products", strconv.FormatInt(id, 10))
	if err := s.api.Request(ctx, http.MethodDelete, path, nil, nil, token, nil); err != nil {
		s.logger.Warn("Delete product failed", zap.Int64("product_id", id), zap.Error(err))
		return upstreamFailure("delete product", err)
	}
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}
