package cart

import "github.com/shopspring/decimal"

// subtotal is Σ price×quantity at current catalog prices.
func subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func mapRowsToItems(rows []cartRow) []CartItem {
	items := make([]CartItem, 0, len(rows))
	for _, r := range rows {
		images := r.Images
		if images == nil {
			images = []string{}
		}
		items = append(items, CartItem{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Product: ProductCart{
				Name:         r.Name,
				Price:        r.Price,
				Images:       images,
				Weight:       r.Weight,
				CountInStock: r.CountInStock,
			},
		})
	}
	return items
}
