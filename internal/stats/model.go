package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

type Range string

const (
	Range7Days  Range = "7d"
	Range30Days Range = "30d"
	Range90Days Range = "90d"
	Range1Year  Range = "1y"

	DefaultRange = Range30Days
)

// ParseRange falls back to DefaultRange for empty or unknown input.
func ParseRange(s string) Range {
	switch r := Range(s); r {
	case Range7Days, Range30Days, Range90Days, Range1Year:
		return r
	}
	return DefaultRange
}

// Since returns the start of the window ending at now.
func (r Range) Since(now time.Time) time.Time {
	switch r {
	case Range7Days:
		return now.AddDate(0, 0, -7)
	case Range90Days:
		return now.AddDate(0, 0, -90)
	case Range1Year:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

type RecentOrder struct {
	ID        string          `json:"id"`
	UserName  string          `json:"userName"`
	Total     decimal.Decimal `json:"totalPrice"`
	Status    string          `json:"status"`
	IsPaid    bool            `json:"isPaid"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Dashboard is the admin overview. TotalRevenue covers all paid orders
// regardless of Range; NewCustomers and TopProducts are windowed.
type Dashboard struct {
	Range          Range           `json:"range"`
	Since          time.Time       `json:"since"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalOrders    int             `json:"totalOrders"`
	TotalProducts  int             `json:"totalProducts"`
	TotalCustomers int             `json:"totalCustomers"`
	NewCustomers   int             `json:"newCustomers"`
	TopProducts    []TopProduct    `json:"topProducts"`
	RecentOrders   []RecentOrder   `json:"recentOrders"`
}
