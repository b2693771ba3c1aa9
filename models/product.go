package models

// Product is a catalog entry as served by the backend, priced in its own
// currency and converted into the display currency.
type Product struct {
	ID             int64   `json:"id"`
	Description    string  `json:"description"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	ConvertedPrice float64 `json:"convertedPrice"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	Stock          int     `json:"stock"`
}

// ProductInput is the create/update payload of the product form.
type ProductInput struct {
	Description string  `json:"description" binding:"required"`
	Brand       string  `json:"brand" binding:"required"`
	Model       string  `json:"model" binding:"required"`
	Currency    string  `json:"currency" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    *string `json:"imageUrl"`
}

// Page is the paged envelope returned by list endpoints.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalPages    int  `json:"totalPages"`
	TotalElements int  `json:"totalElements"`
	Number        int  `json:"number"`
	Last          bool `json:"last"`
}
