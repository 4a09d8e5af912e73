package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boutique-be/internal/apperr"
	"boutique-be/internal/lock"
	"boutique-be/internal/logger"
	"boutique-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	GetCart(ctx context.Context, userID uint) (*Cart, error)
	SetItemQuantity(ctx context.Context, params SetItemParams) (*Cart, error)
	RemoveItem(ctx context.Context, userID uint, productID string) (*Cart, error)
	ClearCart(ctx context.Context, userID uint) (*Cart, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
	locker      lock.Locker
}

func NewService(repo Repository, productRepo product.Repository, locker lock.Locker) Service {
	return &service{repo: repo, productRepo: productRepo, locker: locker}
}

func (s *service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return s.withItems(ctx, c)
}

// SetItemQuantity adds quantity to the existing line (additive) or removes
// the line when quantity <= 0. The cart is left untouched on failure.
func (s *service) SetItemQuantity(ctx context.Context, params SetItemParams) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetItemQuantity"),
		zap.String("product_id", params.ProductID),
		zap.Int("quantity", params.Quantity),
	)

	productID := strings.TrimSpace(params.ProductID)
	if productID == "" {
		return nil, ErrProductIDRequired
	}

	unlock, err := s.lock(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}

	c, err := s.repo.GetOrCreateCart(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	existing, err := s.repo.GetCartItem(ctx, c.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}

	switch {
	case params.Quantity <= 0:
		if existing != nil {
			if err := s.repo.RemoveCartItem(ctx, c.ID, productID); err != nil {
				return nil, fmt.Errorf("remove cart item: %w", err)
			}
		}

	case existing != nil:
		// headroom check: existing+requested may overflow int
		if params.Quantity > p.CountInStock-existing.Quantity {
			log.Info("stock ceiling reached",
				zap.Int("in_cart", existing.Quantity),
				zap.Int("requested", params.Quantity),
				zap.Int("available", p.CountInStock),
			)
			return nil, apperr.InsufficientStock(ErrInsufficientStock, p.CountInStock)
		}
		total := existing.Quantity + params.Quantity
		if err := s.repo.UpdateCartItemQuantity(ctx, c.ID, productID, total); err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}

	default:
		if !p.InStock(params.Quantity) {
			log.Info("stock ceiling reached", zap.Int("available", p.CountInStock))
			return nil, apperr.InsufficientStock(ErrInsufficientStock, p.CountInStock)
		}
		if err := s.repo.CreateCartItem(ctx, c.ID, productID, params.Quantity); err != nil {
			return nil, fmt.Errorf("create cart item: %w", err)
		}
	}

	return s.withItems(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID uint, productID string) (*Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, ErrProductIDRequired
	}

	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := s.repo.RemoveCartItem(ctx, c.ID, productID); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}
	return s.withItems(ctx, c)
}

func (s *service) ClearCart(ctx context.Context, userID uint) (*Cart, error) {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	c, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	c.Items = []CartItem{}
	return c, nil
}

func (s *service) lock(ctx context.Context, userID uint) (func(), error) {
	unlock, err := s.locker.Lock(ctx, lock.CartKey(userID))
	if err != nil {
		logger.FromCtx(ctx).Warn("cart lock not acquired", zap.Uint("user_id", userID), zap.Error(err))
		if errors.Is(err, lock.ErrTimeout) {
			return nil, ErrCartBusy
		}
		return nil, apperr.Wrap(ErrCartBusy, err)
	}
	return unlock, nil
}

func (s *service) withItems(ctx context.Context, c *Cart) (*Cart, error) {
	rows, err := s.repo.GetCartItems(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	c.Items = mapRowsToItems(rows)
	c.Subtotal = subtotal(c.Items)
	return c, nil
}
