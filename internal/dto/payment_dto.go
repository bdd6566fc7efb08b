package dto

import "time"

type CheckoutResponse struct {
	OrderId         string `json:"order_id"`
	SnapToken       string `json:"snap_token"`
	SnapRedirectUrl string `json:"snap_redirect_url"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	// Signature validation fields
	SignatureKey string `json:"signature_key" validate:"required"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}

type SubscriptionStatusResponse struct {
	IsActive         bool       `json:"is_active"`
	PlanSlug         string     `json:"plan_slug,omitempty"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}
