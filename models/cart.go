package models

import "github.com/shopspring/decimal"

// CartItem is a product held in the cart with its quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is convertedPrice * quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.ConvertedPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the line totals of items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
