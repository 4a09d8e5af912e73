package stats

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	CountOrders(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	CountNewCustomers(ctx context.Context, since time.Time) (int, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders WHERE is_paid = true`,
	).Scan(&total)
	return total, err
}

func (r *repository) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders`)
}

func (r *repository) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products`)
}

func (r *repository) CountCustomers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE role = 'customer'`)
}

func (r *repository) CountNewCustomers(ctx context.Context, since time.Time) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM users WHERE role = 'customer' AND created_at >= $1`, since)
}

// TopProducts ranks by quantity ordered since the given time, using the
// name and image snapshotted on the order lines.
func (r *repository) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, MAX(oi.name), COALESCE(MAX(oi.image), ''), SUM(oi.quantity) AS qty
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1
		GROUP BY oi.product_id
		ORDER BY qty DESC, oi.product_id
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TopProduct, 0, limit)
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Image, &p.Quantity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, COALESCE(u.name, ''), o.total, o.status, o.is_paid, o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentOrder, 0, limit)
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.ID, &o.UserName, &o.Total, &o.Status, &o.IsPaid, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
