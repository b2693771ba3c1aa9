package controllers

import (
	"strconv"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
	"github.com/yashrajoria/storefront/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	listDateLayout   = "02/01/2006"
	detailDateLayout = "02/01/2006 15:04"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

type cartLineView struct {
	models.Product
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type cartView struct {
	Items []cartLineView `json:"items"`
	Count int            `json:"count"`
	Total string         `json:"total"`
	Empty bool           `json:"empty"`
}

func newCartView(snap store.CartSnapshot) cartView {
	lines := make([]cartLineView, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, cartLineView{
			Product:   item.Product,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return cartView{
		Items: lines,
		Count: snap.Count,
		Total: snap.Total.StringFixed(2),
		Empty: len(lines) == 0,
	}
}

type orderSummaryView struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
}

type orderItemView struct {
	ProductID                int64  `json:"productId"`
	Description              string `json:"description"`
	Brand                    string `json:"brand"`
	Model                    string `json:"model"`
	Quantity                 int    `json:"quantity"`
	PriceAtPurchase          string `json:"priceAtPurchase"`
	CurrencyAtPurchase       string `json:"currencyAtPurchase"`
	ConvertedPriceAtPurchase string `json:"convertedPriceAtPurchase"`
}

type orderDetailView struct {
	ID                  int64           `json:"id"`
	Date                string          `json:"date"`
	Items               []orderItemView `json:"items"`
	TotalPrice          string          `json:"totalPrice"`
	TotalConvertedPrice string          `json:"totalConvertedPrice"`
}

// formatOrderDate renders the order date with layout, falling back to the raw
// value when the backend sent something unparseable.
func formatOrderDate(order models.Order, layout string) string {
	t, err := order.PlacedAt()
	if err != nil {
		return order.OrderDate
	}
	return t.Format(layout)
}

func newOrderSummary(order models.Order) orderSummaryView {
	return orderSummaryView{
		ID:        order.ID,
		Date:      formatOrderDate(order, listDateLayout),
		Total:     money(order.TotalConvertedPrice),
		ItemCount: len(order.Items),
	}
}

func newOrderDetail(order models.Order) orderDetailView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemView{
			ProductID:                item.Product.ID,
			Description:              item.Product.Description,
			Brand:                    item.Product.Brand,
			Model:                    item.Product.Model,
			Quantity:                 item.Quantity,
			PriceAtPurchase:          money(item.PriceAtPurchase),
			CurrencyAtPurchase:       item.CurrencyAtPurchase,
			ConvertedPriceAtPurchase: money(item.ConvertedPriceAtPurchase),
		})
	}
	return orderDetailView{
		ID:                  order.ID,
		Date:                formatOrderDate(order, detailDateLayout),
		Items:               items,
		TotalPrice:          money(order.TotalPrice),
		TotalConvertedPrice: money(order.TotalConvertedPrice),
	}
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("Invalid id")
	}
	return id, nil
}

// fail hands err to the error middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
