package payment

import (
	"context"
	"fmt"
	"strings"

	"boutique-be/internal/apperr"
	"boutique-be/internal/auth"
	"boutique-be/internal/logger"
	"boutique-be/internal/metrics"
	"boutique-be/internal/order"
	"boutique-be/internal/user"
	"boutique-be/internal/utils"

	"go.uber.org/zap"
)

const (
	eventPaymentCompleted = "payment.completed"
	eventPaymentFailed    = "payment.failed"
)

type Service interface {
	Initiate(ctx context.Context, orderID string, requester auth.Principal) (*InitiateResult, error)
	Confirm(ctx context.Context, token, orderID string, requester auth.Principal) (*ConfirmResult, error)
	HandleWebhook(ctx context.Context, n WebhookNotification) error
}

type service struct {
	orders   order.Service
	users    user.Repository
	gateway  Gateway
	repo     Repository
	counters *metrics.Payments
}

func NewService(
	orders order.Service,
	users user.Repository,
	gateway Gateway,
	repo Repository,
	counters *metrics.Payments,
) Service {
	if counters == nil {
		counters = &metrics.Payments{}
	}
	return &service{
		orders:   orders,
		users:    users,
		gateway:  gateway,
		repo:     repo,
		counters: counters,
	}
}

func (s *service) Initiate(ctx context.Context, orderID string, requester auth.Principal) (*InitiateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Initiate"),
		zap.String("order_id", orderID),
	)

	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderIDRequired
	}

	o, err := s.orders.GetOrderByID(ctx, orderID, requester)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, ErrAlreadyPaid
	}

	payer, err := s.payerFor(ctx, o)
	if err != nil {
		log.Error("failed to load payer", zap.Uint("user_id", o.UserID), zap.Error(err))
		return nil, err
	}

	resp, err := s.gateway.CreatePayment(ctx, CreateRequest{
		OrderID: o.ID,
		Amount:  o.Total,
		Note:    fmt.Sprintf("Commande #%s", shortID(o.ID)),
		Payer:   payer,
	})
	if err != nil {
		s.counters.ProviderErrors.Inc()
		return nil, err
	}

	if err := s.repo.SavePayment(ctx, &Payment{
		OrderID:     o.ID,
		Provider:    ProviderPaymee,
		Token:       resp.Token,
		PaymentURL:  resp.PaymentURL,
		Amount:      o.Total,
		Status:      StatusPending,
		RawResponse: resp.RawResponse,
	}); err != nil {
		log.Error("failed to persist payment", zap.String("token", resp.Token), zap.Error(err))
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	s.counters.Initiated.Inc()
	log.Info("payment initiated", zap.String("token", resp.Token))

	return &InitiateResult{Token: resp.Token, PaymentURL: resp.PaymentURL}, nil
}

func (s *service) Confirm(ctx context.Context, token, orderID string, requester auth.Principal) (*ConfirmResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Confirm"),
		zap.String("order_id", orderID),
		zap.String("token", token),
	)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrOrderIDRequired
	}

	o, err := s.orders.GetOrderByID(ctx, orderID, requester)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		s.counters.DuplicateConfirmations.Inc()
		return &ConfirmResult{OrderID: o.ID, Status: StatusPaid, AlreadyPaid: true}, nil
	}

	if err := s.checkBinding(ctx, token, o.ID); err != nil {
		log.Warn("payment token bound to another order")
		return nil, err
	}

	check, err := s.gateway.CheckPayment(ctx, token)
	if err != nil {
		s.counters.ProviderErrors.Inc()
		return nil, err
	}
	if check.OrderID != "" && check.OrderID != o.ID {
		log.Warn("provider reports a different order", zap.String("provider_order_id", check.OrderID))
		return nil, ErrTokenMismatch
	}

	if !check.Paid {
		log.Info("payment still pending")
		return &ConfirmResult{OrderID: o.ID, Status: StatusPending}, nil
	}

	applied, err := s.settle(ctx, o.ID, token, check.TransactionID)
	if err != nil {
		return nil, err
	}

	return &ConfirmResult{
		OrderID:       o.ID,
		Status:        StatusPaid,
		AlreadyPaid:   !applied,
		TransactionID: check.TransactionID,
	}, nil
}

// HandleWebhook processes a provider callback at most once per token.
func (s *service) HandleWebhook(ctx context.Context, n WebhookNotification) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandleWebhook"),
		zap.String("token", n.Token),
		zap.String("order_id", n.OrderID),
	)

	s.counters.WebhooksReceived.Inc()

	if err := s.gateway.VerifyWebhook(n); err != nil {
		log.Warn("webhook rejected", zap.Error(err))
		return err
	}

	eventType := eventPaymentFailed
	if n.PaymentStatus {
		eventType = eventPaymentCompleted
	}

	webhookID, dup, err := s.repo.SavePaymentWebhook(ctx, ProviderPaymee, n.Token, eventType, n.OrderID, n.Payload, true)
	if err != nil {
		log.Error("failed to store webhook", zap.Error(err))
		return apperr.Wrap(apperr.ErrInternal, err)
	}
	if dup {
		s.counters.WebhookDuplicates.Inc()
		log.Info("duplicate webhook ignored")
		return nil
	}

	if err := s.processWebhook(ctx, n); err != nil {
		log.Error("webhook processing failed", zap.Error(err))
		if markErr := s.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}
		return err
	}

	if err := s.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}
	return nil
}

func (s *service) processWebhook(ctx context.Context, n WebhookNotification) error {
	p, err := s.repo.GetPaymentByToken(ctx, n.Token)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, err)
	}

	orderID := n.OrderID
	switch {
	case p != nil && orderID == "":
		orderID = p.OrderID
	case p != nil && p.OrderID != orderID:
		return ErrTokenMismatch
	case orderID == "":
		return ErrOrderIDRequired
	}

	if !n.PaymentStatus {
		if err := s.repo.MarkPaymentFailed(ctx, n.Token); err != nil {
			return apperr.Wrap(apperr.ErrInternal, err)
		}
		return nil
	}

	_, err = s.settle(ctx, orderID, n.Token, n.TransactionID)
	return err
}

// settle marks the order paid once and mirrors it on the payment row.
func (s *service) settle(ctx context.Context, orderID, token, transactionID string) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID),
		zap.String("token", token),
	)

	applied, err := s.orders.MarkAsPaid(ctx, orderID, order.PaymentResult{
		Provider:      ProviderPaymee,
		TransactionID: transactionID,
		Token:         token,
		Status:        string(StatusPaid),
	})
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return false, apperr.Wrap(apperr.ErrInternal, err)
	}

	if err := s.repo.MarkPaymentPaid(ctx, token, transactionID); err != nil {
		log.Warn("payment row not updated", zap.Error(err))
	}

	if applied {
		s.counters.Confirmed.Inc()
		log.Info("order paid", zap.String("transaction_id", transactionID))
	} else {
		s.counters.DuplicateConfirmations.Inc()
	}
	return applied, nil
}

// checkBinding rejects a token recorded for a different order.
func (s *service) checkBinding(ctx context.Context, token, orderID string) error {
	p, err := s.repo.GetPaymentByToken(ctx, token)
	if err != nil {
		return apperr.Wrap(apperr.ErrInternal, err)
	}
	if p != nil && p.OrderID != orderID {
		return ErrTokenMismatch
	}
	return nil
}

func (s *service) payerFor(ctx context.Context, o *order.Order) (Payer, error) {
	u, err := s.users.FindByID(ctx, o.UserID)
	if err != nil {
		return Payer{}, err
	}

	name := u.Name
	if o.ShippingAddress.FullName != "" {
		name = o.ShippingAddress.FullName
	}
	first, last := utils.SplitFullName(name)

	phone := u.Phone
	if phone == "" {
		phone = o.ShippingAddress.Phone
	}

	return Payer{
		FirstName: first,
		LastName:  last,
		Email:     u.Email,
		Phone:     phone,
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
