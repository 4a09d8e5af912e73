package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	Images       []string        `json:"images"`
	Weight       float64         `json:"weight"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// InStock reports whether qty units can be taken from the current stock.
func (p *Product) InStock(qty int) bool {
	return qty <= p.CountInStock
}

type ListOptions struct {
	Search  string
	InStock bool
	Page    int32
	Limit   int32
}

type ListResult struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"totalCount"`
	Page       int32     `json:"page"`
	Limit      int32     `json:"limit"`
}
