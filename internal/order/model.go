package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"boutique-be/internal/address"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string                  `json:"id"`
	UserID          uint                    `json:"userId"`
	User            *Buyer                  `json:"user,omitempty"`
	Items           []OrderItem             `json:"orderItems"`
	ShippingAddress address.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Total           decimal.Decimal         `json:"totalPrice"`
	Status          Status                  `json:"status"`
	IsPaid          bool                    `json:"isPaid"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult          `json:"paymentResult,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

type Buyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderItem holds the snapshot taken at checkout. Product is the current
// catalog view and is nil once the product is gone.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Product   *ProductDetail  `json:"product,omitempty"`
}

type ProductDetail struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Images       []string        `json:"images"`
	CountInStock int             `json:"countInStock"`
}

type PaymentResult struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transactionId"`
	Token         string `json:"token"`
	Status        string `json:"status"`
}

// Value encodes as a JSON string; lib/pq would send []byte as bytea.
func (p PaymentResult) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *PaymentResult) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("order: unsupported payment result type")
	}
}

type OrderItemInput struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput             `json:"items"`
	ShippingAddress address.ShippingAddressInput `json:"shippingAddress"`
	Total           decimal.Decimal              `json:"total"`
	PaymentMethod   string                       `json:"paymentMethod"`
}

// UnmarshalJSON also accepts the older orderItems / totalPrice keys when the
// current ones are absent.
func (in *CreateOrderInput) UnmarshalJSON(b []byte) error {
	type plain CreateOrderInput
	var aux struct {
		plain
		Total      *decimal.Decimal `json:"total"`
		OrderItems []OrderItemInput `json:"orderItems"`
		TotalPrice *decimal.Decimal `json:"totalPrice"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	*in = CreateOrderInput(aux.plain)
	if len(in.Items) == 0 {
		in.Items = aux.OrderItems
	}
	switch {
	case aux.Total != nil:
		in.Total = *aux.Total
	case aux.TotalPrice != nil:
		in.Total = *aux.TotalPrice
	}
	return nil
}

// ItemsTotal is Σ price×quantity over the snapshot.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// quantities sums item quantities per product.
func (o *Order) quantities() map[string]int {
	q := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		q[it.ProductID] += it.Quantity
	}
	return q
}
