package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string          `json:"id"`
	UserID    uint            `json:"userId"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CartItem struct {
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Product   ProductCart `json:"product"`
}

// ProductCart is the live catalog view of a cart line's product.
type ProductCart struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Images       []string        `json:"images"`
	Weight       float64         `json:"weight"`
	CountInStock int             `json:"countInStock"`
}

// cartRow is one joined cart_items/products row.
type cartRow struct {
	CartID       string
	ProductID    string
	Quantity     int
	Name         string
	Price        decimal.Decimal
	Images       []string
	Weight       float64
	CountInStock int
}

type SetItemParams struct {
	UserID    uint
	ProductID string
	Quantity  int
}
