package payments

import (
	"context"
	"encoding/json"
	"huletfish/src/models"
	"huletfish/src/types"
	"net/http"
)

type Outcome string

const (
	OUTCOME_SUCCEEDED Outcome = "succeeded"
	OUTCOME_FAILED    Outcome = "failed"
	OUTCOME_PENDING   Outcome = "pending"
	OUTCOME_IGNORED   Outcome = "ignored"
)

type CheckoutRequest struct {
	PaymentID   string
	BookingID   uint
	Amount      float64
	Currency    string
	Description string
	Customer    models.CustomerInfo
	ReturnURL   string
}

type CheckoutSession struct {
	Reference    string
	ClientSecret string
	CheckoutURL  string
	Details      models.GatewayDetails
}

// GatewayStatus is the gateway's current view of a payment.
type GatewayStatus struct {
	Reference   string
	Outcome     Outcome
	Status      string
	Message     string
	// ProviderRef is the gateway's own receipt reference, when it issues one.
	ProviderRef string
}

// WebhookNotification is a verified gateway callback normalised across gateways.
type WebhookNotification struct {
	GatewayStatus
	Gateway   types.PaymentMethod
	EventID   string
	EventType string
	Payload   json.RawMessage
}

type Gateway interface {
	Name() types.PaymentMethod
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	Verify(ctx context.Context, reference string) (*GatewayStatus, error)
	// ParseWebhook authenticates payload and must return ErrSignatureInvalid
	// (wrapped) when it cannot.
	ParseWebhook(payload []byte, header http.Header) (*WebhookNotification, error)
}

// emptyDetails returns the variant for method with no correlation id yet.
func emptyDetails(method types.PaymentMethod) models.GatewayDetails {
	switch method {
	case types.PAYMENT_METHOD_STRIPE:
		return models.StripeGatewayDetails(models.StripeDetails{})
	case types.PAYMENT_METHOD_CHAPA:
		return models.ChapaGatewayDetails(models.ChapaDetails{})
	}
	return models.GatewayDetails{}
}
