package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMapRowsToItems(t *testing.T) {
	rows := []cartRow{
		{ProductID: "p1", Quantity: 2, Name: "Chechia", Price: decimal.RequireFromString("19.5"), CountInStock: 4},
		{ProductID: "p2", Quantity: 1, Name: "Fouta", Price: decimal.RequireFromString("12"), Images: []string{"f.jpg"}},
	}

	items := mapRowsToItems(rows)

	assert.Len(t, items, 2)
	assert.Equal(t, "Chechia", items[0].Product.Name)
	assert.NotNil(t, items[0].Product.Images)
	assert.Equal(t, []string{"f.jpg"}, items[1].Product.Images)

	assert.Equal(t, "51", subtotal(items).String())
}

func TestMapRowsToItems_Empty(t *testing.T) {
	items := mapRowsToItems(nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.True(t, subtotal(items).IsZero())
}
