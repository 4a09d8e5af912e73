package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"boutique-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error)
	GetCartItems(ctx context.Context, cartID string) ([]cartRow, error)
	GetCartItem(ctx context.Context, cartID, productID string) (*CartItem, error)
	CreateCartItem(ctx context.Context, cartID, productID string, quantity int) error
	UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, cartID, productID string) error
	ClearCart(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetOrCreateCart relies on the unique user_id to make lazy creation safe
// under concurrent first requests.
func (r *repository) GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error) {
	c := &Cart{}
	err := r.db.QueryRowContext(ctx, `
	INSERT INTO carts (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	RETURNING id, user_id, created_at, updated_at
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get or create cart",
			zap.String("layer", "repository"),
			zap.String("method", "GetOrCreateCart"),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return c, nil
}

func (r *repository) GetCartItems(ctx context.Context, cartID string) ([]cartRow, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetCartItems"),
		zap.String("cart_id", cartID),
	)

	start := time.Now()

	rows, err := r.db.QueryContext(ctx, `
	SELECT
		ci.cart_id,
		ci.product_id,
		ci.quantity,
		p.name,
		p.price,
		p.images,
		p.weight,
		p.count_in_stock
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.cart_id = $1
	ORDER BY ci.created_at ASC
	`, cartID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := make([]cartRow, 0)
	for rows.Next() {
		var row cartRow
		if err := rows.Scan(
			&row.CartID,
			&row.ProductID,
			&row.Quantity,
			&row.Name,
			&row.Price,
			pq.Array(&row.Images),
			&row.Weight,
			&row.CountInStock,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(result)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// GetCartItem returns nil, nil when the product has no line in the cart.
func (r *repository) GetCartItem(ctx context.Context, cartID, productID string) (*CartItem, error) {
	item := &CartItem{}
	err := r.db.QueryRowContext(ctx, `
	SELECT product_id, quantity
	FROM cart_items
	WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID).Scan(&item.ProductID, &item.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) CreateCartItem(ctx context.Context, cartID, productID string, quantity int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateCartItem"),
		zap.String("cart_id", cartID),
		zap.String("product_id", productID),
	)

	_, err := r.db.ExecContext(ctx, `
	INSERT INTO cart_items (cart_id, product_id, quantity)
	VALUES ($1, $2, $3)
	`, cartID, productID, quantity)
	if err != nil {
		log.Error("failed to create cart item", zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) UpdateCartItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE cart_items
	SET quantity = $1, updated_at = NOW()
	WHERE cart_id = $2 AND product_id = $3
	`, quantity, cartID, productID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// RemoveCartItem is idempotent.
func (r *repository) RemoveCartItem(ctx context.Context, cartID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
	DELETE FROM cart_items
	WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return err
	}
	return nil
}

// ClearCart empties the user's cart, if any. It never creates one.
func (r *repository) ClearCart(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx, `
	DELETE FROM cart_items
	WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)
	`, userID)
	return err
}
