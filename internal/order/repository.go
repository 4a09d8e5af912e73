package order

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"boutique-be/internal/apperr"
	"boutique-be/internal/db"
	"boutique-be/internal/logger"
	"boutique-be/internal/product"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrdersByUser(ctx context.Context, userID uint) ([]*Order, error)
	ListAllOrders(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, recredit bool) (bool, error)
	DeleteOrder(ctx context.Context, id string, status Status, recredit bool) (bool, error)
	MarkPaid(ctx context.Context, id string, result PaymentResult) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

var errStale = errors.New("order: status changed concurrently")

// CreateOrder debits stock and inserts the order in one transaction. Product
// rows are locked in id order so concurrent checkouts cannot deadlock on
// each other.
func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_id", o.ID),
	)

	start := time.Now()
	qty := o.quantities()
	ids := make([]string, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	err := db.WithRetry(ctx, r.db, db.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, id := range ids {
			var stock int
			err := tx.QueryRowContext(ctx,
				`SELECT count_in_stock FROM products WHERE id = $1 FOR UPDATE`, id,
			).Scan(&stock)
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.WithDetail(product.ErrProductNotFound, id)
			}
			if err != nil {
				return err
			}
			if stock < qty[id] {
				return apperr.InsufficientStock(apperr.WithDetail(ErrInsufficientStock, id), stock)
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET count_in_stock = count_in_stock - $1 WHERE id = $2 AND count_in_stock >= $1`,
				qty[id], id,
			); err != nil {
				return err
			}
		}

		err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, user_id, shipping_address, payment_method,
			total, status, is_paid
		) VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING created_at, updated_at
		`,
			o.ID, o.UserID, o.ShippingAddress, o.PaymentMethod, o.Total, o.Status,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		for _, it := range o.Items {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, price, image)
			VALUES ($1, $2, $3, $4, $5, $6)
			`, o.ID, it.ProductID, it.Name, it.Quantity, it.Price, it.Image); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			log.Error("create order transaction failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		}
		return err
	}

	log.Info("order persisted",
		zap.Int("items", len(o.Items)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

const orderSelect = `
	SELECT
		o.id,
		o.user_id,
		COALESCE(u.name, ''),
		COALESCE(u.email, ''),
		o.shipping_address,
		o.payment_method,
		o.total,
		o.status,
		o.is_paid,
		o.paid_at,
		o.payment_result,
		o.created_at,
		o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var (
		o      Order
		buyer  Buyer
		paidAt sql.NullTime
		result []byte
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&buyer.Name,
		&buyer.Email,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.Total,
		&o.Status,
		&o.IsPaid,
		&paidAt,
		&result,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.User = &buyer
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if len(result) > 0 {
		o.PaymentResult = &PaymentResult{}
		if err := o.PaymentResult.Scan(result); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// GetOrderByID returns nil, nil when the order does not exist.
func (r *repository) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListOrdersByUser(ctx context.Context, userID uint) ([]*Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *repository) ListAllOrders(ctx context.Context) ([]*Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems fetches the items of all orders in one query.
func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT
		oi.order_id,
		oi.product_id,
		oi.name,
		oi.quantity,
		oi.price,
		oi.image,
		p.name,
		p.price,
		p.images,
		p.count_in_stock
	FROM order_items oi
	LEFT JOIN products p ON p.id = oi.product_id
	WHERE oi.order_id = ANY($1)
	ORDER BY oi.id ASC
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      OrderItem
			pName   sql.NullString
			pPrice  decimal.NullDecimal
			pImages []string
			pStock  sql.NullInt64
		)
		if err := rows.Scan(
			&orderID,
			&it.ProductID,
			&it.Name,
			&it.Quantity,
			&it.Price,
			&it.Image,
			&pName,
			&pPrice,
			pq.Array(&pImages),
			&pStock,
		); err != nil {
			return err
		}

		if pName.Valid {
			if pImages == nil {
				pImages = []string{}
			}
			it.Product = &ProductDetail{
				Name:         pName.String,
				Price:        pPrice.Decimal,
				Images:       pImages,
				CountInStock: int(pStock.Int64),
			}
		}

		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

const recreditStock = `
	UPDATE products p
	SET count_in_stock = p.count_in_stock + oi.qty
	FROM (
		SELECT product_id, SUM(quantity) AS qty
		FROM order_items
		WHERE order_id = $1
		GROUP BY product_id
	) oi
	WHERE p.id = oi.product_id
`

// UpdateStatus applies from -> to only if the order is still in from. It
// returns false when another writer changed the status first.
func (r *repository) UpdateStatus(ctx context.Context, id string, from, to Status, recredit bool) (bool, error) {
	err := db.WithRetry(ctx, r.db, db.DefaultTxOptions(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		`, to, id, from)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return errStale
		}

		if recredit {
			if _, err := tx.ExecContext(ctx, recreditStock, id); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, errStale) {
		return false, nil
	}
	return err == nil, err
}

// DeleteOrder hard-deletes the order if it is still in status, recrediting
// its stock first when asked.
func (r *repository) DeleteOrder(ctx context.Context, id string, status Status, recredit bool) (bool, error) {
	err := db.WithRetry(ctx, r.db, db.DefaultTxOptions(), func(tx *sql.Tx) error {
		var current Status
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && current != status) {
			return errStale
		}
		if err != nil {
			return err
		}

		if recredit {
			if _, err := tx.ExecContext(ctx, recreditStock, id); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		return err
	})
	if errors.Is(err, errStale) {
		return false, nil
	}
	return err == nil, err
}

// MarkPaid is a no-op returning false when the order is already paid. A
// cancelled order is still marked paid and logged for refund.
func (r *repository) MarkPaid(ctx context.Context, id string, result PaymentResult) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "MarkPaid"),
		zap.String("order_id", id),
	)

	var status Status
	err := r.db.QueryRowContext(ctx, `
	UPDATE orders
	SET is_paid = true,
		paid_at = NOW(),
		payment_result = $2,
		status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
		updated_at = NOW()
	WHERE id = $1 AND is_paid = false
	RETURNING status
	`, id, result).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return false, err
	}

	if status == StatusCancelled {
		log.Warn("payment received for cancelled order, refund needed",
			zap.String("provider", result.Provider),
			zap.String("transaction_id", result.TransactionID),
		)
	}
	return true, nil
}
