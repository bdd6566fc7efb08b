package service

import (
	"context"
	"testing"
	"time"

	"pdfchat-be/internal/config"
	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/pkg/apperror"
	"pdfchat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

type stubSnap struct {
	last *snap.Request
	err  *midtrans.Error
}

func (s *stubSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &snap.Response{Token: "tok-123", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/tok-123"}, nil
}

type paymentFixture struct {
	db        *memDB
	snap      *stubSnap
	publisher *recordingPublisher
	svc       *paymentService
	now       time.Time
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		db:        newMemDB(),
		snap:      &stubSnap{},
		publisher: &recordingPublisher{},
		now:       time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	cfg := config.MidtransConfig{
		ServerKey: testServerKey,
		PlanSlug:  "pro-monthly",
		PlanName:  "PDF Chat Pro",
		PlanPrice: 50000,
		FinishURL: "http://localhost:3000/app?payment=success",
	}
	f.svc = NewPaymentService(f.db, f.snap, f.publisher, cfg, logger.NewNopLogger()).(*paymentService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func notification(orderId, status string) *dto.MidtransWebhookRequest {
	return &dto.MidtransWebhookRequest{
		TransactionStatus: status,
		OrderId:           orderId,
		StatusCode:        "200",
		GrossAmount:       "50000.00",
		SignatureKey:      Signature(orderId, "200", "50000.00", testServerKey),
	}
}

func TestCheckout_SavesPendingOrder(t *testing.T) {
	f := newPaymentFixture()
	user := uuid.New()

	res, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, "tok-123", res.SnapToken)
	assert.Equal(t, res.OrderId, f.snap.last.TransactionDetails.OrderID)
	assert.Equal(t, int64(50000), f.snap.last.TransactionDetails.GrossAmt)

	sub := f.db.subscriptions[user]
	require.NotNil(t, sub)
	assert.Equal(t, res.OrderId, sub.OrderId)
	assert.Equal(t, entity.PaymentStatusPending, sub.PaymentStatus)
	assert.Equal(t, entity.SubscriptionStatusInactive, sub.Status)
}

func TestCheckout_SnapErrorSavesNothing(t *testing.T) {
	f := newPaymentFixture()
	f.snap.err = &midtrans.Error{Message: "unauthorized", StatusCode: 401}

	_, err := f.svc.Checkout(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Empty(t, f.db.subscriptions)
}

func TestHandleNotification_SettlementActivatesOnce(t *testing.T) {
	f := newPaymentFixture()
	user := uuid.New()
	res, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(res.OrderId, "settlement")))
	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(res.OrderId, "settlement")))

	sub := f.db.subscriptions[user]
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, entity.PaymentStatusPaid, sub.PaymentStatus)
	assert.Equal(t, f.now.AddDate(0, 1, 0), *sub.CurrentPeriodEnd)
	assert.Equal(t, []string{events.TypeSubscriptionActivated}, f.publisher.types())

	ok, err := f.svc.IsSubscribed(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleNotification_RenewalExtendsFromPeriodEnd(t *testing.T) {
	f := newPaymentFixture()
	user := uuid.New()

	first, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(first.OrderId, "settlement")))

	second, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusActive, f.db.subscriptions[user].Status)

	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(second.OrderId, "capture")))
	assert.Equal(t, f.now.AddDate(0, 2, 0), *f.db.subscriptions[user].CurrentPeriodEnd)
}

func TestHandleNotification_FailureDeactivates(t *testing.T) {
	f := newPaymentFixture()
	user := uuid.New()
	res, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(res.OrderId, "expire")))

	sub := f.db.subscriptions[user]
	assert.Equal(t, entity.SubscriptionStatusInactive, sub.Status)
	assert.Equal(t, entity.PaymentStatusFailed, sub.PaymentStatus)
	assert.Empty(t, f.publisher.events)
}

func TestHandleNotification_NoOps(t *testing.T) {
	f := newPaymentFixture()
	user := uuid.New()
	res, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(res.OrderId, "pending")))

	challenged := notification(res.OrderId, "capture")
	challenged.FraudStatus = "challenge"
	require.NoError(t, f.svc.HandleNotification(context.Background(), challenged))

	assert.Equal(t, entity.PaymentStatusPending, f.db.subscriptions[user].PaymentStatus)
}

func TestHandleNotification_Rejections(t *testing.T) {
	f := newPaymentFixture()

	forged := notification("sub-x", "settlement")
	forged.SignatureKey = "deadbeef"
	assert.ErrorIs(t, f.svc.HandleNotification(context.Background(), forged), apperror.ErrForbidden)

	assert.ErrorIs(t, f.svc.HandleNotification(context.Background(), notification("sub-unknown", "settlement")), apperror.ErrNotFound)
}

func TestGetSubscriptionStatus(t *testing.T) {
	f := newPaymentFixture()
	user := uuid.New()

	status, err := f.svc.GetSubscriptionStatus(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Equal(t, "inactive", status.Status)

	res, err := f.svc.Checkout(context.Background(), user)
	require.NoError(t, err)
	require.NoError(t, f.svc.HandleNotification(context.Background(), notification(res.OrderId, "settlement")))

	status, err = f.svc.GetSubscriptionStatus(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.Equal(t, "pro-monthly", status.PlanSlug)

	f.now = f.now.AddDate(0, 2, 0)
	status, err = f.svc.GetSubscriptionStatus(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
}
