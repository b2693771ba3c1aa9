package models

import (
	"fmt"
	"time"
)

type OrderItem struct {
	ID                       int64   `json:"id"`
	Product                  Product `json:"product"`
	Quantity                 int     `json:"quantity"`
	PriceAtPurchase          float64 `json:"priceAtPurchase"`
	CurrencyAtPurchase       string  `json:"currencyAtPurchase"`
	ConvertedPriceAtPurchase float64 `json:"convertedPriceAtPurchase"`
}

// Order is the client-side projection of a placed order.
type Order struct {
	ID                  int64       `json:"id"`
	OrderDate           string      `json:"orderDate"`
	Items               []OrderItem `json:"items"`
	TotalPrice          float64     `json:"totalPrice"`
	TotalConvertedPrice float64     `json:"totalConvertedPrice"`
}

type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderRequest struct {
	Items []OrderLine `json:"items"`
}

// NewCreateOrderRequest maps cart line items to the order payload.
func NewCreateOrderRequest(items []CartItem) CreateOrderRequest {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{ProductID: item.ID, Quantity: item.Quantity})
	}
	return CreateOrderRequest{Items: lines}
}

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// PlacedAt parses OrderDate, accepting zone-less timestamps as UTC.
func (o Order) PlacedAt() (time.Time, error) {
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, o.OrderDate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized order date %q", o.OrderDate)
}
