package order

import (
	"context"
	"strings"
	"time"

	"boutique-be/internal/address"
	"boutique-be/internal/apperr"
	"boutique-be/internal/auth"
	"boutique-be/internal/logger"
	"boutique-be/internal/messaging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPaymentMethod = "Paymee"
	publishTimeout       = 3 * time.Second
)

type Service interface {
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, orderID string, requester auth.Principal) (*Order, error)
	GetUserOrders(ctx context.Context, userID uint) ([]*Order, error)
	GetAllOrders(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status string) (*Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	MarkAsPaid(ctx context.Context, orderID string, result PaymentResult) (bool, error)
}

type service struct {
	repo      Repository
	publisher messaging.Publisher
}

func NewService(repo Repository, publisher messaging.Publisher) Service {
	if publisher == nil {
		publisher = messaging.NewNopPublisher()
	}
	return &service{repo: repo, publisher: publisher}
}

func (s *service) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if input.Total.IsNegative() {
		return nil, ErrInvalidTotal
	}

	items := make([]OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		productID := strings.TrimSpace(it.ProductID)
		if _, err := uuid.Parse(productID); err != nil || it.Quantity < 1 || it.Price.IsNegative() {
			return nil, apperr.WithDetail(ErrInvalidItem, productID)
		}
		items = append(items, OrderItem{
			ProductID: productID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
		})
	}

	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = defaultPaymentMethod
	}

	shipping := address.MapInputToShipping(input.ShippingAddress)
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: shipping,
		PaymentMethod:   method,
		Total:           input.Total,
		Status:          StatusPending,
	}

	if sum := o.ItemsTotal(); !sum.Equal(o.Total) {
		log.Warn("submitted total differs from items total",
			zap.String("total", o.Total.String()),
			zap.String("items_total", sum.String()),
		)
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total.String()),
	)

	s.publish(ctx, messaging.TopicOrderCreated, o, "")
	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, orderID string, requester auth.Principal) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !requester.CanAccess(o.UserID) {
		logger.FromCtx(ctx).Warn("order access denied",
			zap.String("order_id", orderID),
			zap.Uint("owner_id", o.UserID),
		)
		return nil, apperr.ErrForbidden
	}
	return o, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}

func (s *service) GetAllOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAllOrders(ctx)
}

// UpdateStatus validates the transition against the status table. Moving to
// cancelled gives the stock back.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
	)

	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	if o.Status == next {
		return o, nil
	}
	if !CanTransition(o.Status, next) {
		log.Info("illegal status transition",
			zap.String("from", string(o.Status)),
			zap.String("to", string(next)),
		)
		return nil, ErrIllegalTransition
	}

	recredit := next == StatusCancelled && o.Status.HoldsStock()
	applied, err := s.repo.UpdateStatus(ctx, orderID, o.Status, next, recredit)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrOrderConflict
	}

	previous := o.Status
	o.Status = next
	o.UpdatedAt = time.Now()

	log.Info("order status updated",
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.Bool("stock_recredited", recredit),
	)

	s.publish(ctx, messaging.TopicOrderStatusChanged, o, previous)
	return o, nil
}

func (s *service) DeleteOrder(ctx context.Context, orderID string) error {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o == nil {
		return ErrOrderNotFound
	}

	recredit := o.Status.HoldsStock()
	applied, err := s.repo.DeleteOrder(ctx, orderID, o.Status, recredit)
	if err != nil {
		return err
	}
	if !applied {
		return ErrOrderConflict
	}

	logger.FromCtx(ctx).Info("order deleted",
		zap.String("order_id", orderID),
		zap.Bool("stock_recredited", recredit),
	)

	s.publish(ctx, messaging.TopicOrderDeleted, o, "")
	return nil
}

// MarkAsPaid reports false when the order was already paid; the event is
// published only by the call that applied the update.
func (s *service) MarkAsPaid(ctx context.Context, orderID string, result PaymentResult) (bool, error) {
	applied, err := s.repo.MarkPaid(ctx, orderID, result)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil || o == nil {
		logger.FromCtx(ctx).Warn("paid order reload failed", zap.String("order_id", orderID), zap.Error(err))
		o = &Order{ID: orderID, Status: StatusConfirmed, IsPaid: true, PaymentResult: &result, Total: decimal.Zero}
	}

	s.publish(ctx, messaging.TopicOrderPaid, o, "")
	return true, nil
}

// publish is best effort: the order is already committed.
func (s *service) publish(ctx context.Context, topic string, o *Order, previous Status) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := messaging.OrderEvent{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PreviousStatus: string(previous),
		Total:          o.Total.String(),
		OccurredAt:     time.Now().UTC(),
	}
	if o.PaymentResult != nil {
		ev.TransactionID = o.PaymentResult.TransactionID
	}

	if err := s.publisher.PublishEvent(pctx, topic, o.ID, ev); err != nil {
		logger.FromCtx(ctx).Warn("order event not published",
			zap.String("topic", topic),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}
