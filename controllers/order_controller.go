package controllers

import (
	"net/http"
	"strconv"
	"sync"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/middleware"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/navigation"
	"github.com/yashrajoria/storefront/services"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderController serves the Orders tab. Orders fetched by the list are
// kept so OrderDetail can render without another call; they are dropped
// on logout.
type OrderController struct {
	orders   services.OrderService
	nav      *navigation.Navigator
	pageSize int
	logger   *zap.Logger

	mu     sync.RWMutex
	loaded map[int64]models.Order
}

func NewOrderController(orders services.OrderService, sessions *store.SessionStore, nav *navigation.Navigator, pageSize int, logger *zap.Logger) *OrderController {
	oc := &OrderController{
		orders:   orders,
		nav:      nav,
		pageSize: pageSize,
		logger:   logger,
		loaded:   make(map[int64]models.Order),
	}
	sessions.Subscribe(func(state store.SessionState, _ *models.Session) {
		if state == store.LoggedOut {
			oc.forget()
		}
	})
	return oc
}

// List fetches one page. The call is bound to the Orders screen and is
// canceled if the user navigates away before it completes.
func (oc *OrderController) List(c *gin.Context) {
	page := 0
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, apperrors.Validation("Invalid page"))
			return
		}
		page = n
	}

	ctx, cancel, err := oc.nav.Focus(c.Request.Context(), navigation.Orders)
	if err != nil {
		fail(c, err)
		return
	}
	defer cancel()

	session, _ := middleware.GetSession(c)
	orders, err := oc.orders.ListOrders(ctx, session.Token, c.Query("currency"), page)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindCanceled {
			oc.logger.Debug("Orders fetch canceled", zap.Int("page", page))
			fail(c, err)
			return
		}
		fail(c, apperrors.Network("Could not load orders. Please try again.", err))
		return
	}

	oc.remember(page, orders)

	views := make([]orderSummaryView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderSummary(order))
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":  views,
		"page":    page,
		"hasMore": len(orders) == oc.pageSize,
	})
}

func (oc *OrderController) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	oc.mu.RLock()
	order, ok := oc.loaded[id]
	oc.mu.RUnlock()
	if !ok {
		fail(c, apperrors.ErrOrderNotLoaded)
		return
	}

	if err := oc.nav.Navigate(navigation.OrderDetail); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": newOrderDetail(order)})
}

// remember replaces the loaded set on the first page and extends it after.
func (oc *OrderController) remember(page int, orders []models.Order) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if page == 0 {
		oc.loaded = make(map[int64]models.Order, len(orders))
	}
	for _, order := range orders {
		oc.loaded[order.ID] = order
	}
}

func (oc *OrderController) forget() {
	oc.mu.Lock()
	oc.loaded = make(map[int64]models.Order)
	oc.mu.Unlock()
}
