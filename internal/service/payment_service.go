package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
	"time"

	"pdfchat-be/internal/config"
	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapClient is the part of the Midtrans Snap client used at checkout.
type SnapClient interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// NewSnapClient builds a Snap client for the configured environment.
func NewSnapClient(cfg config.MidtransConfig) SnapClient {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	var c snap.Client
	c.New(cfg.ServerKey, env)
	return &c
}

type IPaymentService interface {
	Checkout(ctx context.Context, userId uuid.UUID) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	IsSubscribed(ctx context.Context, userId uuid.UUID) (bool, error)
}

type paymentService struct {
	uowFactory unitofwork.RepositoryFactory
	snap       SnapClient
	publisher  EventPublisher
	cfg        config.MidtransConfig
	logger     logger.ILogger
	now        func() time.Time
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	snapClient SnapClient,
	publisher EventPublisher,
	cfg config.MidtransConfig,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory: uowFactory,
		snap:       snapClient,
		publisher:  publisher,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// Checkout starts a Snap transaction for the single paid plan. Paying
// while already active extends the current period.
func (s *paymentService) Checkout(ctx context.Context, userId uuid.UUID) (*dto.CheckoutResponse, error) {
	orderId := "sub-" + uuid.NewString()

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: s.cfg.PlanPrice,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    s.cfg.PlanSlug,
				Price: s.cfg.PlanPrice,
				Qty:   1,
				Name:  s.cfg.PlanName,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if s.cfg.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: s.cfg.FinishURL}
	}

	snapResp, midErr := s.snap.CreateTransaction(snapReq)
	if midErr != nil {
		s.logger.Error("PaymentService", "Snap transaction failed", map[string]interface{}{
			"user_id":  userId,
			"order_id": orderId,
			"error":    midErr.GetMessage(),
		})
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOneForUpdate(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &entity.UserSubscription{
			Id:        uuid.New(),
			UserId:    userId,
			Status:    entity.SubscriptionStatusInactive,
			CreatedAt: s.now(),
		}
	}
	sub.OrderId = orderId
	sub.PlanSlug = s.cfg.PlanSlug
	sub.PaymentStatus = entity.PaymentStatusPending
	sub.GrossAmount = s.cfg.PlanPrice
	sub.UpdatedAt = s.now()

	if err := uow.SubscriptionRepository().Save(ctx, sub); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("PaymentService", "Checkout created", map[string]interface{}{
		"user_id":  userId,
		"order_id": orderId,
		"amount":   s.cfg.PlanPrice,
	})

	return &dto.CheckoutResponse{
		OrderId:         orderId,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

// Signature computes the Midtrans notification signature,
// SHA512(order_id + status_code + gross_amount + server_key) in hex.
func Signature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return fmt.Sprintf("%x", sum)
}

func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.cfg.ServerKey == "" {
		return fmt.Errorf("midtrans server key not configured")
	}

	expected := Signature(req.OrderId, req.StatusCode, req.GrossAmount, s.cfg.ServerKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(req.SignatureKey)) != 1 {
		s.logger.Warn("PaymentService", "Webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return fmt.Errorf("%w: invalid signature", apperror.ErrForbidden)
	}

	var (
		newStatus  entity.SubscriptionStatus
		newPayment entity.PaymentStatus
	)
	switch req.TransactionStatus {
	case "capture", "settlement":
		if req.FraudStatus == "challenge" {
			s.logger.Info("PaymentService", "Payment held for fraud review", map[string]interface{}{
				"order_id": req.OrderId,
			})
			return nil
		}
		newStatus = entity.SubscriptionStatusActive
		newPayment = entity.PaymentStatusPaid
	case "deny", "cancel", "expire":
		newStatus = entity.SubscriptionStatusInactive
		newPayment = entity.PaymentStatusFailed
	default:
		s.logger.Info("PaymentService", "Notification needs no action", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOneForUpdate(ctx, specification.ByOrderID{OrderID: req.OrderId})
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("%w: order %s", apperror.ErrNotFound, req.OrderId)
	}

	// Redelivered notifications for an order already applied are no-ops.
	if sub.PaymentStatus == newPayment {
		return nil
	}

	now := s.now()
	if newStatus == entity.SubscriptionStatusActive {
		start := now
		if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(now) {
			start = *sub.CurrentPeriodEnd
		}
		end := start.AddDate(0, 1, 0)
		sub.CurrentPeriodEnd = &end
		sub.Status = newStatus
	} else if !sub.IsActive(now) {
		sub.Status = newStatus
	}
	sub.PaymentStatus = newPayment
	sub.UpdatedAt = now

	if err := uow.SubscriptionRepository().Save(ctx, sub); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("PaymentService", "Subscription updated", map[string]interface{}{
		"user_id":        sub.UserId,
		"order_id":       sub.OrderId,
		"status":         sub.Status,
		"payment_status": sub.PaymentStatus,
	})

	if sub.Status == entity.SubscriptionStatusActive && s.publisher != nil {
		evt := events.SubscriptionActivated(sub.UserId.String(), sub.OrderId, *sub.CurrentPeriodEnd)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("PaymentService", "Failed to publish event", map[string]interface{}{
				"type":  evt.EventType(),
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *paymentService) GetSubscriptionStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionStatusResponse{
			IsActive: false,
			Status:   string(entity.SubscriptionStatusInactive),
		}, nil
	}

	return &dto.SubscriptionStatusResponse{
		IsActive:         sub.IsActive(s.now()),
		PlanSlug:         sub.PlanSlug,
		Status:           string(sub.Status),
		PaymentStatus:    string(sub.PaymentStatus),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}

func (s *paymentService) IsSubscribed(ctx context.Context, userId uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return false, err
	}
	return sub.IsActive(s.now()), nil
}
